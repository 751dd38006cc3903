package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"communique-chatbot/internal/model"
)

// DocumentStore is the persistence surface DocumentService needs.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByURL(url string) (*model.Document, error)
	List() ([]model.Document, error)
	Count() (int64, error)
	CountProcessed() (int64, error)
}

// IngestPublisher hands a document off to the background ingest pipeline.
type IngestPublisher interface {
	PublishIngest(ctx context.Context, job model.IngestJob) error
}

// IndexStats exposes the external index's vector count for reconciliation.
type IndexStats interface {
	VectorCount(ctx context.Context) (int, error)
}

type DocumentService struct {
	docRepo   DocumentStore
	convRepo  ConversationStore
	publisher IngestPublisher
	index     IndexStats
	logger    *zap.Logger
}

type AddDocumentInput struct {
	Filename   string
	URL        string
	SourceType string
}

// AddDocumentResult reports whether the row is new; handlers use it to pick
// between 201 and 200 (duplicate URL).
type AddDocumentResult struct {
	Document model.Document `json:"document"`
	Created  bool           `json:"created"`
}

type Stats struct {
	TotalDocuments     int64 `json:"total_documents"`
	ProcessedDocuments int64 `json:"processed_documents"`
	UserConversations  int64 `json:"user_conversations"`
	// Nil when the index could not be reached; a missing count is not the
	// same as an empty index.
	IndexVectorCount *int `json:"index_vector_count,omitempty"`
}

func NewDocumentService(
	docRepo DocumentStore,
	convRepo ConversationStore,
	publisher IngestPublisher,
	index IndexStats,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		convRepo:  convRepo,
		publisher: publisher,
		index:     index,
		logger:    logger,
	}
}

// Add records the document and enqueues an ingest job. A URL that was
// submitted before returns the existing row untouched, which also keeps a
// repeated admin submission from producing duplicate vectors.
func (s *DocumentService) Add(ctx context.Context, input AddDocumentInput) (*AddDocumentResult, error) {
	filename := strings.TrimSpace(input.Filename)
	url := strings.TrimSpace(input.URL)
	if filename == "" || url == "" {
		return nil, ErrInvalidInput
	}
	sourceType := strings.TrimSpace(input.SourceType)
	if sourceType == "" {
		sourceType = "pdf"
	}

	existing, err := s.docRepo.GetByURL(url)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AddDocumentResult{Document: *existing, Created: false}, nil
	}

	doc := &model.Document{
		Filename:   filename,
		URL:        url,
		SourceType: sourceType,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	job := model.IngestJob{
		JobID:      uuid.NewString(),
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		URL:        doc.URL,
		SourceType: doc.SourceType,
	}
	if err := s.publisher.PublishIngest(ctx, job); err != nil {
		// The row stays visible as unprocessed; the admin can resubmit.
		s.logger.Error("enqueue ingest job failed",
			zap.String("job_id", job.JobID),
			zap.Uint("document_id", doc.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("document queued for ingestion",
		zap.String("job_id", job.JobID),
		zap.Uint("document_id", doc.ID),
		zap.String("url", doc.URL))

	return &AddDocumentResult{Document: *doc, Created: true}, nil
}

// BulkAdd runs Add per item and never aborts the batch on a single failure.
func (s *DocumentService) BulkAdd(ctx context.Context, inputs []AddDocumentInput) []BulkAddResult {
	results := make([]BulkAddResult, 0, len(inputs))
	for _, input := range inputs {
		result, err := s.Add(ctx, input)
		item := BulkAddResult{URL: strings.TrimSpace(input.URL)}
		switch {
		case err != nil:
			item.Status = "failed"
		case !result.Created:
			item.Status = "exists"
		default:
			item.Status = "queued"
			item.DocumentID = result.Document.ID
		}
		results = append(results, item)
	}
	return results
}

type BulkAddResult struct {
	URL        string `json:"url"`
	Status     string `json:"status"`
	DocumentID uint   `json:"document_id,omitempty"`
}

func (s *DocumentService) List() ([]model.Document, error) {
	return s.docRepo.List()
}

// GetStats pairs local document counters with the external index's vector
// count so drift between the two systems is visible to the operator.
func (s *DocumentService) GetStats(ctx context.Context, userID uint) (*Stats, error) {
	total, err := s.docRepo.Count()
	if err != nil {
		return nil, err
	}
	processed, err := s.docRepo.CountProcessed()
	if err != nil {
		return nil, err
	}
	conversations, err := s.convRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalDocuments:     total,
		ProcessedDocuments: processed,
		UserConversations:  conversations,
	}
	if s.index != nil {
		if n, statErr := s.index.VectorCount(ctx); statErr == nil {
			stats.IndexVectorCount = &n
		} else {
			s.logger.Warn("fetch index stats failed", zap.Error(statErr))
		}
	}
	return stats, nil
}
