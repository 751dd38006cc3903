package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"communique-chatbot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByURL(url string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("url = ?", url).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query document by url failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// MarkProcessed flips the processed flag; the worker calls this only after
// every chunk of the document has been upserted into the vector index.
func (r *DocumentRepository) MarkProcessed(id uint) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Update("processed", true).Error; err != nil {
		return fmt.Errorf("mark document processed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.Document{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return n, nil
}

func (r *DocumentRepository) CountProcessed() (int64, error) {
	var n int64
	if err := r.db.Model(&model.Document{}).Where("processed = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count processed documents failed: %w", err)
	}
	return n, nil
}
