package inbox

import "context"

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context) ([]*Message, error)
	ListBySender(ctx context.Context, senderID int64) ([]*Message, error)
	ListByRecipient(ctx context.Context, recipientID int64) ([]*Message, error)
}

// UserChecker reports whether a user exists.
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
