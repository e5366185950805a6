package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/chat"
)

// ChatRepo matches the domain chat repository contract.
type ChatRepo interface {
	chat.Repository
	WithTx(tx *gorm.DB) ChatRepo
}

type DBChatRepo struct {
	db *gorm.DB
}

func NewChatRepo(db *gorm.DB) *DBChatRepo {
	return &DBChatRepo{
		db: db,
	}
}

func (r *DBChatRepo) Create(m *chat.Message) error {
	return r.db.Create(m).Error
}

func (r *DBChatRepo) FindByTicketID(ticketID uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.Where("ticket_id = ?", ticketID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}

func (r *DBChatRepo) WithTx(tx *gorm.DB) ChatRepo {
	if tx == nil {
		return r
	}
	return &DBChatRepo{
		db: tx,
	}
}
