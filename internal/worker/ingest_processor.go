package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"communique-chatbot/internal/model"
	"communique-chatbot/internal/pkg/pdfextract"
	"communique-chatbot/internal/pkg/textchunk"
	"communique-chatbot/internal/vectorindex/pinecone"
)

const maxDocumentBytes = 25 << 20 // refuse to buffer PDFs beyond 25 MB

var (
	// ErrFetch covers an unreachable URL or a response that is not a PDF.
	ErrFetch = errors.New("document fetch failed")
	// ErrExtraction covers a PDF that yields no usable text.
	ErrExtraction = errors.New("text extraction failed")
)

// EmbedBatcher turns chunk texts into embedding vectors.
type EmbedBatcher interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorUpserter writes vectors into the external index.
type VectorUpserter interface {
	Upsert(ctx context.Context, vectors []pinecone.Vector) error
}

// DocumentMarker flips the processed flag on the local row.
type DocumentMarker interface {
	MarkProcessed(id uint) error
}

// ProcessorConfig carries the tunable ingestion constants.
type ProcessorConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MinTextLength  int
	EmbedBatchSize int
}

// Processor runs the ingest pipeline for one document: fetch, extract,
// chunk, embed, upsert, mark processed. Any failure leaves the document
// unprocessed; nothing written to the index is rolled back (at-least-once,
// all-or-nothing by convention).
type Processor struct {
	httpClient *http.Client
	embedder   EmbedBatcher
	index      VectorUpserter
	docs       DocumentMarker
	cfg        ProcessorConfig
	logger     *zap.Logger
}

func NewProcessor(
	embedder EmbedBatcher,
	index VectorUpserter,
	docs DocumentMarker,
	cfg ProcessorConfig,
	logger *zap.Logger,
) *Processor {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 100
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 100
	}
	return &Processor{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		embedder:   embedder,
		index:      index,
		docs:       docs,
		cfg:        cfg,
		logger:     logger,
	}
}

func (p *Processor) Process(ctx context.Context, job model.IngestJob) error {
	data, err := p.fetch(ctx, job.URL)
	if err != nil {
		return err
	}

	text, err := pdfextract.ExtractText(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(text) < p.cfg.MinTextLength {
		return fmt.Errorf("%w: extracted %d characters, need at least %d", ErrExtraction, len(text), p.cfg.MinTextLength)
	}

	chunks := textchunk.Split(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks produced", ErrExtraction)
	}

	if err := p.embedAndUpsert(ctx, job, chunks); err != nil {
		return err
	}

	// Only now is the document considered processed: every chunk is in the
	// index under a deterministic id, so a retried job overwrites rather
	// than duplicates.
	if err := p.markProcessed(job); err != nil {
		return err
	}

	p.logger.Info("document ingested",
		zap.String("job_id", job.JobID),
		zap.Uint("document_id", job.DocumentID),
		zap.Int("chunks", len(chunks)))
	return nil
}

func (p *Processor) embedAndUpsert(ctx context.Context, job model.IngestJob, chunks []string) error {
	vectors := make([]pinecone.Vector, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.cfg.EmbedBatchSize {
		end := start + p.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		embeddings, err := p.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed chunks failed: %w", err)
		}

		for i, embedding := range embeddings {
			chunkIndex := start + i
			vectors = append(vectors, pinecone.Vector{
				ID:     fmt.Sprintf("doc-%d-chunk-%d", job.DocumentID, chunkIndex),
				Values: embedding,
				Metadata: map[string]any{
					"source":      job.Filename,
					"url":         job.URL,
					"chunk":       chunkIndex,
					"document_id": job.DocumentID,
					"text":        chunks[chunkIndex],
				},
			})
		}
	}

	if err := p.index.Upsert(ctx, vectors); err != nil {
		return fmt.Errorf("upsert vectors failed: %w", err)
	}
	return nil
}

func (p *Processor) markProcessed(job model.IngestJob) error {
	return p.docs.MarkProcessed(job.DocumentID)
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if !pdfextract.IsPDF(data) {
		return nil, fmt.Errorf("%w: response is not a PDF", ErrFetch)
	}
	return data, nil
}
