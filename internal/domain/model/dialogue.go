package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DialogueState is the finite-state-machine position of one conversation.
// An absent stored record is equivalent to StateStart.
type DialogueState string

const (
	StateStart           DialogueState = "start"
	StateRequestLogin    DialogueState = "request_login"
	StateRequestFullName DialogueState = "request_full_name"
	StateIdentifiedUser  DialogueState = "identified_user"
)

// AllStates enumerates every state the router must have a handler for.
func AllStates() []DialogueState {
	return []DialogueState{
		StateStart,
		StateRequestLogin,
		StateRequestFullName,
		StateIdentifiedUser,
	}
}

func (s DialogueState) Valid() bool {
	switch s {
	case StateStart, StateRequestLogin, StateRequestFullName, StateIdentifiedUser:
		return true
	}
	return false
}

func (s DialogueState) String() string { return string(s) }

// UnmarshalJSON rejects unknown state tags so a snapshot written under an
// older schema fails to decode instead of resurrecting as an unroutable
// state. The store treats such decode failures as an absent record.
func (s *DialogueState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	state := DialogueState(raw)
	if !state.Valid() {
		return fmt.Errorf("unknown dialogue state %q", raw)
	}
	*s = state
	return nil
}

// Command is a recognized slash command inside an identified dialogue.
type Command string

const (
	CommandNone  Command = ""
	CommandGet   Command = "get"
	CommandReset Command = "reset"
)

// ParseCommand extracts a recognized command from message text. A trailing
// "@botname" mention is stripped, as Telegram appends it in group chats.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return CommandNone
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	switch strings.ToLower(name) {
	case "get":
		return CommandGet
	case "reset":
		return CommandReset
	}
	return CommandNone
}

// InboundMessage is one transport update normalized for the dialogue engine.
// Hint fields come from the private chat metadata and may be empty.
type InboundMessage struct {
	ChatID    int64
	Text      string // empty means the update carried no text
	Username  string // pre-authenticated chat username hint
	FirstName string
	LastName  string
}

// HasText reports whether the update carried any text payload.
func (m *InboundMessage) HasText() bool { return m.Text != "" }

// NameHint returns the structured name carried by the chat itself, or nil
// when either part is missing.
func (m *InboundMessage) NameHint() *FullName {
	return NewFullName(m.FirstName, m.LastName)
}

// Command parses the message text for a recognized command.
func (m *InboundMessage) Command() Command { return ParseCommand(m.Text) }
