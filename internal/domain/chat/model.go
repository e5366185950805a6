package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sender constants for chat messages.
const (
	SenderTeam     = "team"
	SenderCustomer = "customer"
)

// Message is one chat message exchanged on a ticket between the submitter
// and the team.
type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"ticket_id"`
	Sender    string     `gorm:"size:20;not null" json:"sender"`
	AuthorID  *uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the database table name
func (Message) TableName() string {
	return "chat_messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Repository defines data access for chat messages.
type Repository interface {
	Create(m *Message) error
	FindByTicketID(ticketID uuid.UUID) ([]Message, error)
}
