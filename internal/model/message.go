package model

import "time"

// Message represents a direct message in the database. ReadAt is nil until
// the recipient marks it read and never changes afterwards.
type Message struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

func (m *Message) Sender() string    { return m.FromUsername }
func (m *Message) Recipient() string { return m.ToUsername }

// MessageDetail is a message joined with both participants' contact data.
type MessageDetail struct {
	ID       string     `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser Contact    `json:"from_user"`
	ToUser   Contact    `json:"to_user"`
}

func (m *MessageDetail) Sender() string    { return m.FromUser.Username }
func (m *MessageDetail) Recipient() string { return m.ToUser.Username }

// SentMessage is the sender's view of a message.
type SentMessage struct {
	ID     string     `json:"id"`
	ToUser Contact    `json:"to_user"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
}

// ReceivedMessage is the recipient's view of a message.
type ReceivedMessage struct {
	ID       string     `json:"id"`
	FromUser Contact    `json:"from_user"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
}

// SendMessageRequest represents a new message; the sender comes from the
// authenticated identity.
type SendMessageRequest struct {
	ToUsername string `json:"to_username" validate:"required,max=64"`
	Body       string `json:"body" validate:"required,max=10000"`
}

// ReadReceipt is returned after marking a message read.
type ReadReceipt struct {
	ID     string    `json:"id"`
	ReadAt time.Time `json:"read_at"`
}
