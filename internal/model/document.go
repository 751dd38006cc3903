package model

import "time"

// Document is the local record of a source submitted for ingestion. The
// extracted chunks and their embeddings live in the external vector index;
// Processed flips to true only after every chunk has been upserted there.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"size:255;not null" json:"filename"`
	URL        string    `gorm:"size:2048;not null" json:"url"`
	SourceType string    `gorm:"size:50;not null;default:pdf" json:"source_type"`
	Processed  bool      `gorm:"not null;default:false" json:"processed"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
