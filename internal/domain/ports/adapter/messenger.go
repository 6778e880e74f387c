package adapter

import "context"

// MessengerAdapter is the outbound half of the chat transport. The engine
// never initiates a transport connection itself; it only replies.
type MessengerAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
