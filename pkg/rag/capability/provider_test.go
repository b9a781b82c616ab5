package capability

import (
	"context"
	"errors"
	"testing"

	"edu-assistant-be/pkg/embedding"
	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/resilience"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls    int
	err      error
	lastTask string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	f.lastTask = taskType
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

type fakeLLM struct {
	got  []llm.Message
	opts llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Response, error) {
	f.got = history
	f.opts = llm.Apply("default", 1, options...)
	tokens := 42
	return &llm.Response{Content: "ok", Model: f.opts.Model, TokensUsed: &tokens}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Response, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type fakeIndex struct {
	vectorindex.Index
	query    vectorindex.Query
	upserted []vectorindex.Point
	deleted  uuid.UUID
}

func (f *fakeIndex) Upsert(ctx context.Context, collection string, points []vectorindex.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeIndex) DeleteByContent(ctx context.Context, collection string, contentID uuid.UUID) error {
	f.deleted = contentID
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, q vectorindex.Query) ([]vectorindex.ScoredPoint, error) {
	f.query = q
	return []vectorindex.ScoredPoint{{ID: "p1", Score: 0.9}}, nil
}

func noRetry() *resilience.Executor {
	cfg := resilience.DefaultConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = false
	return resilience.NewExecutor(cfg, nil)
}

func TestRegistryAvailability(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want map[Capability]bool
	}{
		{
			name: "nothing configured",
			want: map[Capability]bool{Embedding: false, Completion: false, VectorSearch: false},
		},
		{
			name: "embedding only",
			opts: []Option{WithEmbedder(&fakeEmbedder{}, "m")},
			want: map[Capability]bool{Embedding: true, Completion: false, VectorSearch: false},
		},
		{
			name: "everything",
			opts: []Option{WithEmbedder(&fakeEmbedder{}, "m"), WithLLM(&fakeLLM{}), WithVectorIndex(&fakeIndex{})},
			want: map[Capability]bool{Embedding: true, Completion: true, VectorSearch: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(noRetry(), tt.opts...)
			for c, want := range tt.want {
				assert.Equal(t, want, r.IsAvailable(c), c)
			}
		})
	}
}

func TestRegistryUnavailableCalls(t *testing.T) {
	r := NewRegistry(noRetry())

	_, err := r.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = r.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = r.VectorSearch(context.Background(), vectorindex.Query{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRegistryCompletePassesOptions(t *testing.T) {
	fake := &fakeLLM{}
	r := NewRegistry(noRetry(), WithLLM(fake))

	var p Provider = r
	out, err := p.Complete(context.Background(), CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
		Model:       "gpt-4o",
		Temperature: 0,
		MaxTokens:   100,
	})

	require.NoError(t, err)
	require.IsType(t, &CompletionResult{}, out)
	assert.Equal(t, "ok", out.Content)
	require.NotNil(t, out.TokensUsed)
	assert.Equal(t, 42, *out.TokensUsed)
	assert.Equal(t, "gpt-4o", fake.opts.Model)
	assert.Equal(t, 100, fake.opts.MaxTokens)
	require.NotNil(t, fake.opts.Temperature)
	assert.Equal(t, 0.0, *fake.opts.Temperature)
}

func TestRegistryEmbedSurfacesFailure(t *testing.T) {
	fake := &fakeEmbedder{err: errors.New("boom")}
	r := NewRegistry(noRetry(), WithEmbedder(fake, "m"))

	_, err := r.Embed(context.Background(), "x")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "m", r.EmbeddingModel())
}

func TestRegistryVectorSearch(t *testing.T) {
	idx := &fakeIndex{}
	r := NewRegistry(noRetry(), WithVectorIndex(idx))
	userID := uuid.New()

	points, err := r.VectorSearch(context.Background(), vectorindex.Query{Collection: "c", Filter: vectorindex.Filter{UserID: userID}, TopK: 2})

	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, userID, idx.query.Filter.UserID)
}

func TestRegistryWriteSide(t *testing.T) {
	idx := &fakeIndex{}
	emb := &fakeEmbedder{}
	r := NewRegistry(noRetry(), WithVectorIndex(idx), WithEmbedder(emb, "m"))
	contentID := uuid.New()

	_, err := r.EmbedDocument(context.Background(), "chunk")
	require.NoError(t, err)
	assert.Equal(t, embedding.TaskRetrievalDocument, emb.lastTask)

	require.NoError(t, r.UpsertPoints(context.Background(), "c", []vectorindex.Point{{ID: uuid.NewString()}}))
	require.NoError(t, r.DeletePoints(context.Background(), "c", contentID))

	assert.Len(t, idx.upserted, 1)
	assert.Equal(t, contentID, idx.deleted)

	bare := NewRegistry(noRetry())
	assert.ErrorIs(t, bare.UpsertPoints(context.Background(), "c", nil), ErrUnavailable)
	assert.ErrorIs(t, bare.EnsureCollection(context.Background(), "c", 384), ErrUnavailable)
}
