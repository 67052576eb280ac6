package inbox

import (
	"context"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type Service struct {
	tx       db.Transactor
	messages MessageRepository
	users    UserChecker
}

func NewService(tx db.Transactor, messages MessageRepository, users UserChecker) *Service {
	return &Service{tx: tx, messages: messages, users: users}
}

// SendMessage stores a message after checking sender and recipient exist.
// A user may message themselves.
func (s *Service) SendMessage(ctx context.Context, in MessageCreate) (*Message, error) {
	if in.Content == nil {
		return nil, apperror.Validation("content", "field required")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	m := &Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Content:     *in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "sender", m.SenderID); err != nil {
			return err
		}
		if err := s.requireUser(ctx, "recipient", m.RecipientID); err != nil {
			return err
		}
		return s.messages.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) requireUser(ctx context.Context, role string, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound(role, id)
	}
	return nil
}

func (s *Service) GetMessage(ctx context.Context, id int64) (*Message, error) {
	var m *Message
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.messages.GetByID(ctx, id)
		return err
	})
	return m, err
}

func (s *Service) ListMessages(ctx context.Context) ([]*Message, error) {
	var items []*Message
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.messages.List(ctx)
		return err
	})
	return items, err
}

func (s *Service) ListSent(ctx context.Context, userID int64) ([]*Message, error) {
	return s.listForUser(ctx, userID, s.messages.ListBySender)
}

func (s *Service) ListReceived(ctx context.Context, userID int64) ([]*Message, error) {
	return s.listForUser(ctx, userID, s.messages.ListByRecipient)
}

func (s *Service) listForUser(ctx context.Context, userID int64,
	list func(ctx context.Context, id int64) ([]*Message, error)) ([]*Message, error) {
	var items []*Message
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "user", userID); err != nil {
			return err
		}
		var err error
		items, err = list(ctx, userID)
		return err
	})
	return items, err
}
