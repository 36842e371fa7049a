package models

import (
	"fmt"
	"time"
)

// MessageStatus is the closed set of delivery states a message moves through.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusDeleted   MessageStatus = "deleted"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (MessageStatus, error) {
	switch MessageStatus(raw) {
	case StatusSent, StatusDelivered, StatusRead, StatusDeleted:
		return MessageStatus(raw), nil
	}
	return "", fmt.Errorf("unknown message status %q", raw)
}

// CanTransitionTo reports whether moving to next is a legal transition.
// Legal moves are sent->delivered->read and any->deleted; deleted is
// terminal. Same-state transitions are allowed so concurrent readers
// converge without errors.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	if s == next {
		return true
	}
	if next == StatusDeleted {
		return s != StatusDeleted
	}
	switch s {
	case StatusSent:
		return next == StatusDelivered || next == StatusRead
	case StatusDelivered:
		return next == StatusRead
	}
	return false
}

// Message is a directed message between two users. Records are append-only;
// only status, is_read, read_at and the text (sender edits) ever change.
type Message struct {
	ID         int           `db:"id" json:"id"`
	SenderID   int           `db:"sender_id" json:"sender_id"`
	ReceiverID int           `db:"receiver_id" json:"receiver_id"`
	Text       string        `db:"message_text" json:"message"`
	MediaURL   *string       `db:"media_url" json:"media_url,omitempty"`
	Status     MessageStatus `db:"status" json:"status"`
	IsRead     bool          `db:"is_read" json:"is_read"`
	ReadAt     *time.Time    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// PartnerOf returns the other participant relative to userID.
func (m Message) PartnerOf(userID int) int {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Partner is the counterparty identity shown in a conversation summary.
type Partner struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ConversationSummary is the derived, unstored view of a two-party exchange:
// the partner, the newest message in the pair and the requester's unread count.
type ConversationSummary struct {
	PartnerID       int     `json:"id"`
	Partner         Partner `json:"partner"`
	LastMessage     string  `json:"last_message"`
	LastMessageTime string  `json:"last_message_time"`
	Unread          int     `json:"unread"`
}

// ThreadMessage renders one message relative to the requester, so clients
// can place bubbles without re-deriving their own identity.
type ThreadMessage struct {
	ID            int           `json:"id"`
	Sender        string        `json:"sender"`
	Text          string        `json:"text"`
	Time          string        `json:"time"`
	Timestamp     string        `json:"timestamp"`
	AttachmentURL *string       `json:"attachment_url,omitempty"`
	Status        MessageStatus `json:"status"`
	IsRead        bool          `json:"is_read"`
}

const (
	// ThreadSelf and ThreadOther are the perspective-relative sender roles.
	ThreadSelf  = "self"
	ThreadOther = "other"
)
