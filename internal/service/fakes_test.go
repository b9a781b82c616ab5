package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/repository/contract"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/internal/repository/unitofwork"
	"edu-assistant-be/pkg/events"
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/store"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// memDB backs every fake repository; specs are interpreted by type
type memDB struct {
	mu       sync.Mutex
	contents map[uuid.UUID]*entity.Content
	chunks   map[uuid.UUID][]*entity.ContentChunk
	sessions map[uuid.UUID]*entity.ChatSession
	messages []*entity.ChatMessage
}

func newMemDB() *memDB {
	return &memDB{
		contents: map[uuid.UUID]*entity.Content{},
		chunks:   map[uuid.UUID][]*entity.ContentChunk{},
		sessions: map[uuid.UUID]*entity.ChatSession{},
	}
}

func (m *memDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{db: m}
}

type memUoW struct {
	db *memDB
}

func (u *memUoW) Begin(ctx context.Context) error { return nil }
func (u *memUoW) Commit() error                   { return nil }
func (u *memUoW) Rollback() error                 { return nil }

func (u *memUoW) ContentRepository() contract.ContentRepository           { return &memContentRepo{u.db} }
func (u *memUoW) ContentChunkRepository() contract.ContentChunkRepository { return &memChunkRepo{u.db} }
func (u *memUoW) ChatSessionRepository() contract.ChatSessionRepository   { return &memSessionRepo{u.db} }
func (u *memUoW) ChatMessageRepository() contract.ChatMessageRepository   { return &memMessageRepo{u.db} }

type memContentRepo struct{ db *memDB }

func contentMatches(c *entity.Content, specs []specification.Specification) bool {
	if c.IsDeleted {
		return false
	}
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if c.Id != v.ID {
				return false
			}
		case specification.ContentOwnedByUser:
			if c.UserId != v.UserID {
				return false
			}
		case specification.ByProcessingStatus:
			if c.ProcessingStatus != v.Status {
				return false
			}
		}
	}
	return true
}

func (r *memContentRepo) Create(ctx context.Context, c *entity.Content) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *c
	r.db.contents[c.Id] = &cp
	return nil
}

func (r *memContentRepo) Update(ctx context.Context, c *entity.Content) error {
	return r.Create(ctx, c)
}

func (r *memContentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, processed bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.contents[id]
	if !ok {
		return errors.New("missing")
	}
	c.ProcessingStatus = status
	c.Processed = processed
	return nil
}

func (r *memContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.contents[id]; ok {
		c.IsDeleted = true
	}
	return nil
}

func (r *memContentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Content, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memContentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Content
	for _, c := range r.db.contents {
		if contentMatches(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	for _, s := range specs {
		if p, ok := s.(specification.Pagination); ok {
			if p.Offset >= len(out) {
				return []*entity.Content{}, nil
			}
			out = out[p.Offset:]
			if len(out) > p.Limit {
				out = out[:p.Limit]
			}
		}
	}
	return out, nil
}

func (r *memContentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, c := range r.db.contents {
		if contentMatches(c, specs) {
			n++
		}
	}
	return n, nil
}

func (r *memContentRepo) FindDocuments(ctx context.Context, specs ...specification.Specification) ([]store.Document, error) {
	return nil, nil
}

func (r *memContentRepo) FullTextSearch(ctx context.Context, userId uuid.UUID, tokens []string, limit int) ([]store.Document, error) {
	return nil, nil
}

type memChunkRepo struct{ db *memDB }

func (r *memChunkRepo) CreateBatch(ctx context.Context, chunks []*entity.ContentChunk) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range chunks {
		r.db.chunks[c.ContentId] = append(r.db.chunks[c.ContentId], c)
	}
	return nil
}

func (r *memChunkRepo) DeleteByContentId(ctx context.Context, contentId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.chunks, contentId)
	return nil
}

func (r *memChunkRepo) FindByContentId(ctx context.Context, contentId uuid.UUID) ([]*entity.ContentChunk, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.chunks[contentId], nil
}

type memSessionRepo struct{ db *memDB }

func (r *memSessionRepo) Create(ctx context.Context, s *entity.ChatSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *s
	r.db.sessions[s.Id] = &cp
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, s *entity.ChatSession) error {
	return r.Create(ctx, s)
}

func (r *memSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.sessions[id]; ok {
		s.IsDeleted = true
	}
	return nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sessions {
		if s.IsDeleted {
			continue
		}
		match := true
		for _, spec := range specs {
			switch v := spec.(type) {
			case specification.ByID:
				match = match && s.Id == v.ID
			case specification.SessionOwnedByUser:
				match = match && s.UserId == v.UserID
			}
		}
		if match {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) FindAllWithMessageCount(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.db.sessions {
		if s.IsDeleted || s.UserId != userId {
			continue
		}
		cp := *s
		for _, m := range r.db.messages {
			if m.ChatSessionId == s.Id {
				cp.MessageCount++
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

type memMessageRepo struct{ db *memDB }

func (r *memMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *m
	r.db.messages = append(r.db.messages, &cp)
	return nil
}

func (r *memMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

func (r *memMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (r *memMessageRepo) FindRecent(ctx context.Context, sessionId uuid.UUID, n int) ([]*entity.ChatMessage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.db.messages {
		if m.ChatSessionId == sessionId {
			out = append(out, m)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (r *memMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.db.messages)), nil
}

// recordingPublisher captures job payloads instead of queueing them
type recordingPublisher struct {
	mu   sync.Mutex
	jobs map[string][]interface{}
	err  error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{jobs: map[string][]interface{}{}}
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs[topic] = append(p.jobs[topic], payload)
	return nil
}

func (p *recordingPublisher) RegisterFallback(topic string, handler JobHandler) {}

// recordingEvents captures domain events
type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeIndexer records embeddings and point writes
type fakeIndexer struct {
	available bool
	embedErr  error
	points    map[string][]vectorindex.Point
	deleted   []uuid.UUID
	ensured   int
}

func newFakeIndexer(available bool) *fakeIndexer {
	return &fakeIndexer{available: available, points: map[string][]vectorindex.Point{}}
}

func (f *fakeIndexer) IsAvailable(c capability.Capability) bool { return f.available }

func (f *fakeIndexer) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeIndexer) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	f.ensured = dimensions
	return nil
}

func (f *fakeIndexer) UpsertPoints(ctx context.Context, collection string, points []vectorindex.Point) error {
	f.points[collection] = append(f.points[collection], points...)
	return nil
}

func (f *fakeIndexer) DeletePoints(ctx context.Context, collection string, contentID uuid.UUID) error {
	f.deleted = append(f.deleted, contentID)
	return nil
}
