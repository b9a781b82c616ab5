package lexical

import (
	"context"
	"errors"
	"strings"
	"testing"

	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind   string
	terms  []string
	fields []Field
	limit  int
}

// memoryCorpus matches tokens and substrings in-process and records every call.
type memoryCorpus struct {
	docs      []store.Document
	rankedErr error
	calls     []call
}

func (m *memoryCorpus) RankedSearch(ctx context.Context, userID uuid.UUID, tokens []string, limit int) ([]store.Document, error) {
	m.calls = append(m.calls, call{kind: "ranked", terms: tokens, limit: limit})
	if m.rankedErr != nil {
		return nil, m.rankedErr
	}
	return m.match(userID, tokens, []Field{FieldName, FieldContent, FieldKeyConcepts}, limit, true), nil
}

func (m *memoryCorpus) SubstringSearch(ctx context.Context, userID uuid.UUID, terms []string, fields []Field, limit int) ([]store.Document, error) {
	m.calls = append(m.calls, call{kind: "substring", terms: terms, fields: fields, limit: limit})
	return m.match(userID, terms, fields, limit, false), nil
}

func (m *memoryCorpus) match(userID uuid.UUID, terms []string, fields []Field, limit int, wordsOnly bool) []store.Document {
	var out []store.Document
	for _, d := range m.docs {
		if d.UserID != userID {
			continue
		}
		var haystack []string
		for _, f := range fields {
			switch f {
			case FieldName:
				haystack = append(haystack, d.Name)
			case FieldContent:
				haystack = append(haystack, d.Content)
			case FieldKeyConcepts:
				haystack = append(haystack, strings.Join(d.KeyConcepts, " "))
			}
		}
		text := strings.ToLower(strings.Join(haystack, " "))
		for _, term := range terms {
			needle := strings.ToLower(term)
			if wordsOnly {
				needle = " " + needle + " "
				text = " " + text + " "
			}
			if strings.Contains(text, needle) {
				out = append(out, d)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func (m *memoryCorpus) kinds() []string {
	kinds := make([]string, len(m.calls))
	for i, c := range m.calls {
		kinds[i] = c.kind
	}
	return kinds
}

func TestStageStopsAtFirstNonEmptyStrategy(t *testing.T) {
	user := uuid.New()
	corpus := &memoryCorpus{docs: []store.Document{
		{ID: uuid.New(), UserID: user, Name: "Intro to Physics", Content: "energy and momentum"},
	}}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), []string{"energy"}, "what is energy", user, 6)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"ranked"}, corpus.kinds())
	assert.Equal(t, 6, corpus.calls[0].limit)
}

func TestStageFallsBackToKeywordSubstring(t *testing.T) {
	user := uuid.New()
	corpus := &memoryCorpus{docs: []store.Document{
		{ID: uuid.New(), UserID: user, Name: "Thermodynamics", Content: "heat-engines"},
	}}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), []string{"Thermo", "Heat-Engines", "a", "b", "c", "d"}, "q", user, 6)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"ranked", "substring"}, corpus.kinds())
	assert.Equal(t, []string{"thermo", "heat-engines", "a", "b", "c"}, corpus.calls[1].terms)
	assert.Equal(t, []Field{FieldName, FieldContent, FieldKeyConcepts}, corpus.calls[1].fields)
}

func TestStageFallsBackToRawQuery(t *testing.T) {
	user := uuid.New()
	longQuery := "explain mitosis in detail please and also cover meiosis stages thoroughly"
	corpus := &memoryCorpus{docs: []store.Document{
		{ID: uuid.New(), UserID: user, Name: "Cells", Content: longQuery + " notes"},
	}}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), []string{"zzz"}, longQuery, user, 6)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"ranked", "substring", "substring"}, corpus.kinds())
	last := corpus.calls[2]
	assert.Equal(t, []string{longQuery[:50]}, last.terms)
	assert.Equal(t, []Field{FieldName, FieldContent}, last.fields)
}

func TestStageWithoutKeywordsOnlyTriesRawQuery(t *testing.T) {
	user := uuid.New()
	corpus := &memoryCorpus{}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), nil, "photosynthesis", user, 6)

	assert.Empty(t, got)
	assert.Equal(t, []string{"substring"}, corpus.kinds())
}

func TestStageTreatsStrategyErrorAsZeroHits(t *testing.T) {
	user := uuid.New()
	corpus := &memoryCorpus{
		rankedErr: errors.New("syntax error in tsquery"),
		docs:      []store.Document{{ID: uuid.New(), UserID: user, Name: "Algebra", Content: "linear equations"}},
	}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), []string{"algebra"}, "algebra", user, 6)

	require.Len(t, got, 1)
	assert.Equal(t, "Algebra", got[0].Name)
}

func TestStageNeverLeaksOtherUsersContent(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	corpus := &memoryCorpus{docs: []store.Document{
		{ID: uuid.New(), UserID: other, Name: "Quantum Physics", Content: "quantum entanglement"},
	}}
	stage := NewStage(corpus, nil, nil)

	got := stage.Search(context.Background(), []string{"quantum"}, "quantum physics", owner, 6)

	assert.Empty(t, got)
}

func TestStageTruncatesToCandidateLimit(t *testing.T) {
	user := uuid.New()
	many := []store.Document{
		{ID: uuid.New(), UserID: user, Name: "a"},
		{ID: uuid.New(), UserID: user, Name: "b"},
		{ID: uuid.New(), UserID: user, Name: "c"},
	}
	stage := NewStageWithStrategies(nil, nil, staticStrategy{docs: many})

	got := stage.Search(context.Background(), []string{"x"}, "x", user, 2)

	assert.Len(t, got, 2)
}

type staticStrategy struct {
	docs []store.Document
}

func (staticStrategy) Name() string { return "static" }
func (s staticStrategy) Attempt(ctx context.Context, q Query) ([]store.Document, error) {
	return s.docs, nil
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{name: "splits hyphens and spaces", keywords: []string{"cell-division", "mitosis phase"}, want: []string{"cell", "division", "mitosis", "phase"}},
		{name: "strips punctuation", keywords: []string{"C++", "Newton's laws!"}, want: []string{"Newtons", "laws"}},
		{name: "drops short tokens", keywords: []string{"a b cd"}, want: []string{"cd"}},
		{name: "dedupes first seen", keywords: []string{"energy", "kinetic energy"}, want: []string{"energy", "kinetic"}},
		{name: "caps at eight", keywords: []string{"aa bb cc dd ee ff gg hh ii jj"}, want: []string{"aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh"}},
		{name: "unicode letters kept", keywords: []string{"théorème"}, want: []string{"théorème"}},
		{name: "empty", keywords: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.keywords))
		})
	}
}
