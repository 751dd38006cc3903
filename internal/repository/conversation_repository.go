package repository

import (
	"fmt"

	"gorm.io/gorm"

	"communique-chatbot/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(turn *model.ConversationTurn) error {
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("create conversation turn failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's turns oldest first.
func (r *ConversationRepository) ListByUserID(userID uint, limit int) ([]model.ConversationTurn, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var turns []model.ConversationTurn
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Limit(limit).Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list conversation turns failed: %w", err)
	}
	return turns, nil
}

// ListRecentByUserID returns the user's latest n turns, oldest first.
func (r *ConversationRepository) ListRecentByUserID(userID uint, n int) ([]model.ConversationTurn, error) {
	if n <= 0 {
		return nil, nil
	}

	var turns []model.ConversationTurn
	if err := r.db.Where("user_id = ?", userID).Order("id DESC").Limit(n).Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list recent conversation turns failed: %w", err)
	}
	// reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *ConversationRepository) CountByUserID(userID uint) (int64, error) {
	var n int64
	if err := r.db.Model(&model.ConversationTurn{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count conversation turns failed: %w", err)
	}
	return n, nil
}
