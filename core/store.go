package core

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned by stores for unknown message ids.
var ErrMessageNotFound = errors.New("message not found")

// Message is one persisted question/answer exchange of a chat together with
// the full provenance of the run that produced it.
type Message struct {
	ID           string             `json:"id"`
	ChatID       string             `json:"chatId"`
	Question     string             `json:"question"`
	Answer       Prompt             `json:"answer"`
	Usage        Usage              `json:"usage"`
	ActiveAgents []AgentInfo        `json:"activeAgents"`
	Operations   []*OperationRecord `json:"operations"`
	Queries      []*QueryRecord     `json:"queries"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// NewMessage builds a Message from a finished session result.
func NewMessage(chatID, question string, res Result) *Message {
	return &Message{
		ID:           res.SessionID,
		ChatID:       chatID,
		Question:     question,
		Answer:       res.FinalAnswer,
		Usage:        res.TotalUsage,
		ActiveAgents: res.ActiveAgents,
		Operations:   res.Operations,
		Queries:      res.Queries,
		CreatedAt:    time.Now(),
	}
}

// SessionStore persists finished runs as chat messages. Implementations must
// be safe for concurrent use.
type SessionStore interface {
	Save(ctx context.Context, msg *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	// ListByChat returns a chat's messages oldest first.
	ListByChat(ctx context.Context, chatID string) ([]*Message, error)
}

// ChatUsage sums the usage of msgs.
func ChatUsage(msgs []*Message) Usage {
	var total Usage
	for _, m := range msgs {
		total = total.Add(&m.Usage)
	}
	return total
}

// HistoryPrompts turns earlier messages into prior conversation: each
// question as a user prompt followed by its answer as a model prompt.
func HistoryPrompts(msgs []*Message) []Prompt {
	out := make([]Prompt, 0, 2*len(msgs))
	for _, m := range msgs {
		out = append(out, UserText(m.Question))
		if !m.Answer.IsEmpty() {
			answer := m.Answer.Clone()
			answer.Role = RoleModel
			out = append(out, answer)
		}
	}
	return out
}
