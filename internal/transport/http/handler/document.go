package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"communique-chatbot/internal/app"
	"communique-chatbot/internal/transport/http/response"
)

type DocumentHandler struct {
	docService *app.DocumentService
}

type AddDocumentRequest struct {
	Filename   string `json:"filename" binding:"required,max=255"`
	URL        string `json:"url" binding:"required,url,max=2048"`
	SourceType string `json:"source_type" binding:"max=50"`
}

type BulkAddRequest struct {
	Documents []AddDocumentRequest `json:"documents" binding:"required,min=1,dive"`
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Add records the document and queues ingestion. The row shows up in the
// list immediately with processed=false; a duplicate URL returns the
// existing row with 200 instead of creating a second one.
func (h *DocumentHandler) Add(c *gin.Context) {
	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.docService.Add(c.Request.Context(), app.AddDocumentInput{
		Filename:   req.Filename,
		URL:        req.URL,
		SourceType: req.SourceType,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "add document failed")
		}
		return
	}

	if result.Created {
		response.Created(c, result)
	} else {
		response.OK(c, result)
	}
}

func (h *DocumentHandler) BulkAdd(c *gin.Context) {
	var req BulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	inputs := make([]app.AddDocumentInput, len(req.Documents))
	for i, doc := range req.Documents {
		inputs[i] = app.AddDocumentInput{
			Filename:   doc.Filename,
			URL:        doc.URL,
			SourceType: doc.SourceType,
		}
	}

	response.OK(c, gin.H{"results": h.docService.BulkAdd(c.Request.Context(), inputs)})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Stats(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	stats, err := h.docService.GetStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch stats failed")
		return
	}
	response.OK(c, stats)
}
