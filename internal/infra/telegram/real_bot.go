package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-identity-bot/internal/config"
	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/adapter"
	"telegram-identity-bot/internal/infra/logging"
	"telegram-identity-bot/internal/infra/worker"
)

var _ adapter.MessengerAdapter = (*Bot)(nil)

// DispatchFunc processes one normalized inbound message.
type DispatchFunc func(ctx context.Context, msg *model.InboundMessage) error

// Bot is the tgbotapi long-polling adapter. It normalizes each update into a
// model.InboundMessage and hands it to the keyed pool, so updates for the
// same chat are processed strictly in order while chats run in parallel.
type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  *config.BotConfig
	pool *worker.KeyedPool
	log  *zerolog.Logger
}

func NewBot(cfg *config.BotConfig, pool *worker.KeyedPool, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	return &Bot{
		api:  api,
		cfg:  cfg,
		pool: pool,
		log:  logger,
	}, nil
}

// StartPolling consumes updates until ctx is canceled, feeding each message
// through dispatch on the chat's worker queue. Submission into a full queue
// blocks here, which is the engine's backpressure point.
func (b *Bot) StartPolling(ctx context.Context, dispatch DispatchFunc) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("bot", b.api.Self.UserName).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := normalizeMessage(update.Message)
			trace := uuid.NewString()
			task := func(taskCtx context.Context) error {
				taskCtx = logging.WithTraceID(taskCtx, trace)
				taskCtx = logging.WithChatID(taskCtx, msg.ChatID)
				if err := dispatch(taskCtx, msg); err != nil {
					logging.With(taskCtx, b.log).Error().Err(err).Msg("dispatch failed")
				}
				return nil
			}
			if err := b.pool.Submit(ctx, msg.ChatID, task); err != nil {
				b.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("update dropped during shutdown")
			}
		}
	}
}

// SendMessage sends a plain-text reply to a chat.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", chatID, err)
	}
	return nil
}

// normalizeMessage flattens a Telegram message into the engine's inbound
// shape. Username and name hints only exist on private chats.
func normalizeMessage(m *tgbotapi.Message) *model.InboundMessage {
	msg := &model.InboundMessage{
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}
	if m.Chat.IsPrivate() {
		msg.Username = m.Chat.UserName
		msg.FirstName = m.Chat.FirstName
		msg.LastName = m.Chat.LastName
	}
	return msg
}
