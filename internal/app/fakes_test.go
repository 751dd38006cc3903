package app

import (
	"context"
	"errors"
	"strings"

	"communique-chatbot/internal/ai"
	googleauth "communique-chatbot/internal/auth/google"
	"communique-chatbot/internal/model"
	"communique-chatbot/internal/vectorindex/pinecone"
)

type fakeUserStore struct {
	users  []*model.User
	nextID uint
	err    error
}

func (f *fakeUserStore) Create(user *model.User) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByGoogleID(googleID string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeVerifier struct {
	claims *googleauth.Claims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*googleauth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeDocumentStore struct {
	docs   []*model.Document
	nextID uint
	err    error
}

func (f *fakeDocumentStore) Create(doc *model.Document) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	doc.ID = f.nextID
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocumentStore) GetByURL(url string) (*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.docs {
		if d.URL == url {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDocumentStore) List() ([]model.Document, error) {
	out := make([]model.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDocumentStore) Count() (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeDocumentStore) CountProcessed() (int64, error) {
	var n int64
	for _, d := range f.docs {
		if d.Processed {
			n++
		}
	}
	return n, nil
}

type fakePublisher struct {
	jobs []model.IngestJob
	err  error
}

func (f *fakePublisher) PublishIngest(ctx context.Context, job model.IngestJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeIndexStats struct {
	count int
	err   error
}

func (f *fakeIndexStats) VectorCount(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

type fakeConversationStore struct {
	turns  []model.ConversationTurn
	nextID uint
	err    error
}

func (f *fakeConversationStore) Create(turn *model.ConversationTurn) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	turn.ID = f.nextID
	f.turns = append(f.turns, *turn)
	return nil
}

func (f *fakeConversationStore) ListByUserID(userID uint, limit int) ([]model.ConversationTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ConversationTurn
	for _, t := range f.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeConversationStore) ListRecentByUserID(userID uint, n int) ([]model.ConversationTurn, error) {
	return f.ListByUserID(userID, n)
}

func (f *fakeConversationStore) CountByUserID(userID uint) (int64, error) {
	var n int64
	for _, t := range f.turns {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeHistoryCache struct {
	histories map[uint][]model.ConversationTurn
	dirty     map[uint]bool
	setCalls  int
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{
		histories: make(map[uint][]model.ConversationTurn),
		dirty:     make(map[uint]bool),
	}
}

func (f *fakeHistoryCache) GetHistory(ctx context.Context, userID uint) ([]model.ConversationTurn, bool, error) {
	turns, ok := f.histories[userID]
	return turns, ok, nil
}

func (f *fakeHistoryCache) SetHistory(ctx context.Context, userID uint, turns []model.ConversationTurn) error {
	f.setCalls++
	f.histories[userID] = turns
	return nil
}

func (f *fakeHistoryCache) DeleteHistory(ctx context.Context, userID uint) error {
	delete(f.histories, userID)
	return nil
}

func (f *fakeHistoryCache) MarkDirty(ctx context.Context, userID uint) error {
	f.dirty[userID] = true
	return nil
}

func (f *fakeHistoryCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	return f.dirty[userID], nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeCompleter struct {
	reply    string
	err      error
	messages []ai.ChatMessage
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSearcher struct {
	matches []pinecone.Match
	err     error
}

func (f *fakeSearcher) Query(ctx context.Context, vector []float32, topK int) ([]pinecone.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK > 0 && len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func promptContains(messages []ai.ChatMessage, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m.Content, substr) {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
