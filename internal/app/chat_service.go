package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"communique-chatbot/internal/ai"
	"communique-chatbot/internal/model"
	"communique-chatbot/internal/vectorindex/pinecone"
)

const systemPrompt = `You are an expert assistant specializing in Africa's creative economy, drawing insights from Communiqué's African Creative Economy Database and related resources. Answer using the provided context where it is relevant, cite the source of specific entities or data, and say so when the context does not contain the answer.`

// ConversationStore is the persistence surface for the per-user chat log.
type ConversationStore interface {
	Create(turn *model.ConversationTurn) error
	ListByUserID(userID uint, limit int) ([]model.ConversationTurn, error)
	ListRecentByUserID(userID uint, n int) ([]model.ConversationTurn, error)
	CountByUserID(userID uint) (int64, error)
}

// HistoryCache fronts the conversation log with a short-lived Redis copy.
type HistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.ConversationTurn, bool, error)
	SetHistory(ctx context.Context, userID uint, turns []model.ConversationTurn) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

// Embedder and Completer cover the two OpenAI calls the answer flow makes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// VectorSearcher is the nearest-neighbor query against the external index.
type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]pinecone.Match, error)
}

type ChatService struct {
	convRepo     ConversationStore
	historyCache HistoryCache
	embedder     Embedder
	completer    Completer
	index        VectorSearcher
	logger       *zap.Logger

	topK            int
	maxHistoryTurns int
}

type AskInput struct {
	UserID  uint
	Message string
}

// Source describes one retrieved chunk backing the reply.
type Source struct {
	Filename string  `json:"source"`
	URL      string  `json:"url"`
	Snippet  string  `json:"content"`
	Score    float32 `json:"score"`
}

type AskResult struct {
	Reply   string   `json:"reply"`
	Sources []Source `json:"sources"`
}

func NewChatService(
	convRepo ConversationStore,
	historyCache HistoryCache,
	embedder Embedder,
	completer Completer,
	index VectorSearcher,
	topK int,
	maxHistoryTurns int,
	logger *zap.Logger,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = 10
	}
	return &ChatService{
		convRepo:        convRepo,
		historyCache:    historyCache,
		embedder:        embedder,
		completer:       completer,
		index:           index,
		logger:          logger,
		topK:            topK,
		maxHistoryTurns: maxHistoryTurns,
	}
}

// Ask runs one retrieval-augmented exchange: embed the message, pull the
// nearest chunks, assemble a prompt with recent history, call the completion
// API and persist both turns. An empty index simply yields an empty context.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrInvalidInput
	}

	queryVector, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrUpstream, err)
	}

	matches, err := s.index.Query(ctx, queryVector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %v", ErrUpstream, err)
	}

	history, err := s.convRepo.ListRecentByUserID(input.UserID, s.maxHistoryTurns)
	if err != nil {
		return nil, err
	}

	messages := buildPromptMessages(matches, history, message)
	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: completion: %v", ErrUpstream, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "The model returned an empty response."
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.UserID)
		_ = s.historyCache.DeleteHistory(ctx, input.UserID)
	}

	now := time.Now()
	userTurn := &model.ConversationTurn{
		UserID:    input.UserID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: now,
	}
	if err := s.convRepo.Create(userTurn); err != nil {
		return nil, err
	}
	assistantTurn := &model.ConversationTurn{
		UserID:    input.UserID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: now,
	}
	if err := s.convRepo.Create(assistantTurn); err != nil {
		return nil, err
	}

	s.logger.Debug("chat exchange completed",
		zap.Uint("user_id", input.UserID),
		zap.Int("retrieved_chunks", len(matches)))

	return &AskResult{
		Reply:   reply,
		Sources: sourcesFromMatches(matches),
	}, nil
}

// GetHistory returns the user's turns oldest first, via the cache when clean.
func (s *ChatService) GetHistory(ctx context.Context, userID uint, limit int) ([]model.ConversationTurn, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return trimTurns(cached, limit), nil
			}
		}
	}

	// The cache holds the full log; any limit applies on the way out so a
	// limited read never shadows the unlimited one for the TTL.
	turns, err := s.convRepo.ListByUserID(userID, 0)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, turns)
		}
	}
	return trimTurns(turns, limit), nil
}

func buildPromptMessages(matches []pinecone.Match, history []model.ConversationTurn, message string) []ai.ChatMessage {
	var contextBlock strings.Builder
	for _, m := range matches {
		text, _ := m.Metadata["text"].(string)
		if text == "" {
			continue
		}
		contextBlock.WriteString("\n---\n")
		if source, ok := m.Metadata["source"].(string); ok && source != "" {
			contextBlock.WriteString("[" + source + "] ")
		}
		contextBlock.WriteString(text)
	}

	system := systemPrompt
	if contextBlock.Len() > 0 {
		system += "\n\nContext from the database:" + contextBlock.String() + "\n---"
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: message})
	return messages
}

func sourcesFromMatches(matches []pinecone.Match) []Source {
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		text, _ := m.Metadata["text"].(string)
		filename, _ := m.Metadata["source"].(string)
		url, _ := m.Metadata["url"].(string)
		sources = append(sources, Source{
			Filename: filename,
			URL:      url,
			Snippet:  snippet(text, 200),
			Score:    m.Score,
		})
	}
	return sources
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func trimTurns(turns []model.ConversationTurn, limit int) []model.ConversationTurn {
	if limit <= 0 || limit >= len(turns) {
		return turns
	}
	return turns[len(turns)-limit:]
}
