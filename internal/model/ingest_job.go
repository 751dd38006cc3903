package model

// IngestJob is the queue payload that asks the worker to fetch, chunk, embed
// and index one document.
type IngestJob struct {
	JobID      string `json:"job_id"`
	DocumentID uint   `json:"document_id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	SourceType string `json:"source_type"`
}
