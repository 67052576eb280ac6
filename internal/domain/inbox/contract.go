package inbox

import "time"

// MessageCreate is the payload accepted by POST /messages. Content may be
// empty but not missing.
type MessageCreate struct {
	SenderID    int64   `json:"sender_id" validate:"required,gt=0"`
	RecipientID int64   `json:"recipient_id" validate:"required,gt=0"`
	Content     *string `json:"content" validate:"required"`
}

type MessageResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func NewMessageResponses(items []*Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, NewMessageResponse(m))
	}
	return out
}
