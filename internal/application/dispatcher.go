package application

import (
	"context"
	"fmt"
	"time"

	"telegram-identity-bot/internal/domain"
	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/adapter"
	"telegram-identity-bot/internal/domain/ports/repository"
	"telegram-identity-bot/internal/infra/logging"
	"telegram-identity-bot/internal/infra/metrics"
	"telegram-identity-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Dispatcher routes each inbound message to the handler registered for the
// conversation's current state, then persists the handler's decision before
// any reply goes out. An absent stored record routes as StateStart.
//
// Dispatch assumes at most one in-flight call per conversation; the caller
// enforces that by keying its worker queues on the conversation id.
type Dispatcher struct {
	routes    map[model.DialogueState]usecase.Handler
	dialogues repository.DialogueRepository[model.DialogueState]
	messenger adapter.MessengerAdapter
	log       *zerolog.Logger
}

func NewDispatcher(
	dialogues repository.DialogueRepository[model.DialogueState],
	messenger adapter.MessengerAdapter,
	logger *zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		routes:    make(map[model.DialogueState]usecase.Handler),
		dialogues: dialogues,
		messenger: messenger,
		log:       logger,
	}
}

// Register binds a handler to a state tag.
func (d *Dispatcher) Register(state model.DialogueState, h usecase.Handler) {
	d.routes[state] = h
}

// ValidateRoutes fails when any declared state has no handler. Callers run
// this at startup so a routing gap is fatal before the first message, not
// during one.
func (d *Dispatcher) ValidateRoutes() error {
	for _, state := range model.AllStates() {
		if _, ok := d.routes[state]; !ok {
			return fmt.Errorf("no handler registered for state %q: %w", state, domain.ErrNotFound)
		}
	}
	return nil
}

// Dispatch processes one inbound message end to end: load state, invoke the
// handler, persist the next state, send replies. Durable writes strictly
// precede outbound sends, so a store failure leaves the dialogue at its last
// persisted state and the next message retries from there.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *model.InboundMessage) error {
	log := logging.With(ctx, d.log)

	current := model.StateStart
	if stored, err := d.dialogues.Get(ctx, msg.ChatID); err != nil {
		return fmt.Errorf("load dialogue state: %w", err)
	} else if stored != nil {
		if !stored.Valid() {
			// A snapshot from an incompatible schema routes as a fresh
			// dialogue rather than wedging the conversation.
			log.Warn().Str("state", stored.String()).Msg("unknown stored state, restarting dialogue")
		} else {
			current = *stored
		}
	}
	metrics.IncMessage(current.String())

	handler, ok := d.routes[current]
	if !ok {
		return fmt.Errorf("no handler registered for state %q: %w", current, domain.ErrNotFound)
	}

	start := time.Now()
	out, err := handler(ctx, msg)
	metrics.ObserveHandlerLatency(current.String(), float64(time.Since(start))/float64(time.Millisecond), err == nil)
	if err != nil {
		return fmt.Errorf("handle state %s: %w", current, err)
	}

	switch {
	case out.Reset:
		if err := d.dialogues.Remove(ctx, msg.ChatID); err != nil {
			return fmt.Errorf("remove dialogue: %w", err)
		}
		metrics.IncReset()
		log.Debug().Str("state", current.String()).Msg("dialogue removed")
	case out.Next != nil && *out.Next != current:
		if err := d.dialogues.Update(ctx, msg.ChatID, *out.Next); err != nil {
			return fmt.Errorf("persist dialogue state: %w", err)
		}
		metrics.IncTransition(current.String(), out.Next.String())
		log.Debug().Str("from", current.String()).Str("to", out.Next.String()).Msg("dialogue transition")
	}

	for _, text := range out.Replies {
		if err := d.messenger.SendMessage(ctx, msg.ChatID, text); err != nil {
			return fmt.Errorf("send reply: %w", err)
		}
	}
	return nil
}
