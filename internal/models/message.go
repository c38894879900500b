package models

import (
	"sort"
	"time"
)

type MessageType string

const (
	MessageTypeStatus         MessageType = "status"
	MessageTypeMessage        MessageType = "message"
	MessageTypePrivateMessage MessageType = "private_message"
)

const (
	// Everyone is the broadcast recipient.
	Everyone = "Todos"

	JoinText  = "entra na sala..."
	LeaveText = "sai da sala..."

	// TimeLayout is HH:mm:ss without a date component.
	TimeLayout = "15:04:05"
)

type Message struct {
	ID   string      `json:"id,omitempty"`
	From string      `json:"from"`
	To   string      `json:"to"`
	Text string      `json:"text"`
	Type MessageType `json:"type"`
	Time string      `json:"time"`

	// Seq orders messages by insertion inside a store; never sent to clients.
	Seq int64 `json:"-"`
}

type PostMessageRequest struct {
	To   string      `json:"to" validate:"required"`
	Text string      `json:"text" validate:"required"`
	Type MessageType `json:"type" validate:"required,oneof=message private_message"`
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// NewStatusMessage builds the system message announcing a participant entering or leaving.
func NewStatusMessage(name, text string, at time.Time) *Message {
	return &Message{
		From: name,
		To:   Everyone,
		Text: text,
		Type: MessageTypeStatus,
		Time: FormatTime(at),
	}
}

// VisibleTo reports whether requester may see m: it is the sender, the
// recipient, the message is broadcast, or it is typed as a public message.
func (m *Message) VisibleTo(requester string) bool {
	return m.From == requester ||
		m.To == requester ||
		m.To == Everyone ||
		m.Type == MessageTypeMessage
}

// SortFeed orders messages by their formatted time, descending, compared as
// strings. Equal times keep the most recently stored message first.
func SortFeed(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Time != messages[j].Time {
			return messages[i].Time > messages[j].Time
		}
		return messages[i].Seq > messages[j].Seq
	})
}
