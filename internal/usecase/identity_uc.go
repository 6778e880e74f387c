package usecase

import (
	"context"
	"fmt"

	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/repository"
	"telegram-identity-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Prompts mirror the bot's user-facing wording exactly; tests assert on them.
const (
	PromptSayHello        = "Say hello to start the dialogue."
	PromptSendLogin       = "Please send me your username."
	PromptSendFullName    = "Please send me your full name (first and last name)."
	PromptInvalidFullName = "Invalid full name."
	PromptIdentified      = "You are identified. Use /get to get your user information and /reset to flush it."
	PromptUnknownCommand  = "Please, send /get or /reset."
	PromptResetDone       = "Your username was reset. Write any message to start the dialogue again."
)

// Outcome is what a state handler decides: where the dialogue goes next and
// what to tell the user. A nil Next means the state is unchanged and nothing
// is persisted. Reset removes the whole dialogue record instead, so the next
// message starts over from scratch.
type Outcome struct {
	Next    *model.DialogueState
	Reset   bool
	Replies []string
}

// Handler processes one inbound message for a single dialogue state.
type Handler func(ctx context.Context, msg *model.InboundMessage) (Outcome, error)

func stay(replies ...string) Outcome {
	return Outcome{Replies: replies}
}

func transition(next model.DialogueState, replies ...string) Outcome {
	return Outcome{Next: &next, Replies: replies}
}

// Compile-time check
var _ IdentityUseCase = (*identityUC)(nil)

// IdentityUseCase implements the identification flow: secure a login, then a
// full name, then serve /get and /reset. One method per dialogue state.
type IdentityUseCase interface {
	Start(ctx context.Context, msg *model.InboundMessage) (Outcome, error)
	RequestLogin(ctx context.Context, msg *model.InboundMessage) (Outcome, error)
	RequestFullName(ctx context.Context, msg *model.InboundMessage) (Outcome, error)
	IdentifiedUser(ctx context.Context, msg *model.InboundMessage) (Outcome, error)
}

type identityUC struct {
	profiles repository.ProfileRepository
	log      *zerolog.Logger
}

func NewIdentityUseCase(profiles repository.ProfileRepository, logger *zerolog.Logger) *identityUC {
	return &identityUC{profiles: profiles, log: logger}
}

// Start secures a login for the conversation. A public chat username is
// adopted directly; otherwise a previously recorded login is reused; with
// neither, the dialogue moves on to asking for one.
func (u *identityUC) Start(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	defer logging.TraceDuration(u.log, "IdentityUC.Start")()

	if !msg.HasText() {
		return stay(PromptSayHello), nil
	}

	login := msg.Username
	if login != "" {
		if err := u.profiles.SaveLogin(ctx, msg.ChatID, login); err != nil {
			return Outcome{}, err
		}
		u.log.Info().Str("login", login).Msg("user logged in via chat username")
	} else {
		stored, err := u.profiles.FindLogin(ctx, msg.ChatID)
		if err != nil {
			return Outcome{}, err
		}
		if stored == "" {
			return transition(model.StateRequestLogin, PromptSendLogin), nil
		}
		login = stored
	}

	return u.evaluateNameStep(ctx, msg, login)
}

// RequestLogin records whatever text the user sends as their login.
func (u *identityUC) RequestLogin(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	defer logging.TraceDuration(u.log, "IdentityUC.RequestLogin")()

	if !msg.HasText() {
		return stay(PromptSendLogin), nil
	}
	login := msg.Text
	if err := u.profiles.SaveLogin(ctx, msg.ChatID, login); err != nil {
		return Outcome{}, err
	}
	return u.evaluateNameStep(ctx, msg, login)
}

// evaluateNameStep is shared by Start and RequestLogin once a login is
// secured. An inline structured name or a name already on file completes the
// identification; otherwise the dialogue asks for one.
func (u *identityUC) evaluateNameStep(ctx context.Context, msg *model.InboundMessage, login string) (Outcome, error) {
	if name := msg.NameHint(); name != nil {
		if err := u.profiles.SaveName(ctx, login, *name); err != nil {
			return Outcome{}, err
		}
		u.log.Info().Str("login", login).Str("name", name.String()).Msg("user identified via chat name")
		return transition(model.StateIdentifiedUser, PromptIdentified), nil
	}

	name, err := u.profiles.FindName(ctx, login)
	if err != nil {
		return Outcome{}, err
	}
	if name == nil {
		return transition(model.StateRequestFullName, PromptSendFullName), nil
	}
	return transition(model.StateIdentifiedUser, PromptIdentified), nil
}

// RequestFullName parses the user's text into a name. An unparsable name is
// not an error: the dialogue stays put and asks again.
func (u *identityUC) RequestFullName(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	defer logging.TraceDuration(u.log, "IdentityUC.RequestFullName")()

	if !msg.HasText() {
		return stay(PromptSendFullName), nil
	}
	name := model.ParseFullName(msg.Text)
	if name == nil {
		return stay(PromptInvalidFullName), nil
	}

	login, err := u.profiles.FindLogin(ctx, msg.ChatID)
	if err != nil {
		return Outcome{}, err
	}
	if login == "" {
		// The login vanished from the store; collect it again first.
		return transition(model.StateRequestLogin, PromptSendLogin), nil
	}

	if err := u.profiles.SaveName(ctx, login, *name); err != nil {
		return Outcome{}, err
	}
	u.log.Info().Str("login", login).Str("name", name.String()).Msg("user identified")
	return transition(model.StateIdentifiedUser, PromptIdentified), nil
}

// IdentifiedUser serves the recognized commands; anything else gets a usage
// hint and leaves the dialogue where it is.
func (u *identityUC) IdentifiedUser(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	defer logging.TraceDuration(u.log, "IdentityUC.IdentifiedUser")()

	handler, ok := u.commandRoutes()[msg.Command()]
	if !ok {
		return stay(PromptUnknownCommand), nil
	}
	return handler(ctx, msg)
}

// commandRoutes defines the commands available to an identified user.
func (u *identityUC) commandRoutes() map[model.Command]Handler {
	return map[model.Command]Handler{
		model.CommandGet:   u.handleGetCommand,
		model.CommandReset: u.handleResetCommand,
	}
}

func (u *identityUC) handleGetCommand(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	login, err := u.profiles.FindLogin(ctx, msg.ChatID)
	if err != nil {
		return Outcome{}, err
	}
	if login == "" {
		return transition(model.StateRequestLogin, PromptSendLogin), nil
	}
	return stay(fmt.Sprintf("Here is your username: %s.", login)), nil
}

func (u *identityUC) handleResetCommand(ctx context.Context, msg *model.InboundMessage) (Outcome, error) {
	u.log.Info().Int64("chat_id", msg.ChatID).Msg("dialogue reset requested")
	return Outcome{Reset: true, Replies: []string{PromptResetDone}}, nil
}
