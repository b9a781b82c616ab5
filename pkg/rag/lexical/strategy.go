package lexical

import (
	"context"
	"strings"
	"unicode"

	"edu-assistant-be/pkg/store"
)

const (
	maxTokens         = 8
	maxKeywordPhrases = 5
	rawQueryPrefix    = 50
)

// FullTextStrategy ranks content with Postgres full-text search over an OR of normalised tokens.
type FullTextStrategy struct {
	corpus CorpusStore
}

func (FullTextStrategy) Name() string { return "full_text" }

func (s FullTextStrategy) Attempt(ctx context.Context, q Query) ([]store.Document, error) {
	tokens := Tokenize(q.Keywords)
	if len(tokens) == 0 {
		return nil, nil
	}
	return s.corpus.RankedSearch(ctx, q.UserID, tokens, q.Limit)
}

// KeywordSubstringStrategy matches any of the first keyword phrases as a case-insensitive substring.
type KeywordSubstringStrategy struct {
	corpus CorpusStore
}

func (KeywordSubstringStrategy) Name() string { return "keyword_substring" }

func (s KeywordSubstringStrategy) Attempt(ctx context.Context, q Query) ([]store.Document, error) {
	phrases := make([]string, 0, maxKeywordPhrases)
	for _, k := range q.Keywords {
		if len(phrases) == maxKeywordPhrases {
			break
		}
		phrases = append(phrases, strings.ToLower(k))
	}
	if len(phrases) == 0 {
		return nil, nil
	}
	return s.corpus.SubstringSearch(ctx, q.UserID, phrases, []Field{FieldName, FieldContent, FieldKeyConcepts}, q.Limit)
}

// RawQuerySubstringStrategy matches the start of the raw question against name and body.
type RawQuerySubstringStrategy struct {
	corpus CorpusStore
}

func (RawQuerySubstringStrategy) Name() string { return "raw_query_substring" }

func (s RawQuerySubstringStrategy) Attempt(ctx context.Context, q Query) ([]store.Document, error) {
	prefix := truncateRunes(q.OriginalQuery, rawQueryPrefix)
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}
	return s.corpus.SubstringSearch(ctx, q.UserID, []string{prefix}, []Field{FieldName, FieldContent}, q.Limit)
}

// Tokenize splits keywords on hyphens and whitespace, keeps letters and digits, drops tokens shorter than
// two characters and dedupes in first-seen order, capped at eight tokens.
func Tokenize(keywords []string) []string {
	seen := make(map[string]struct{})
	tokens := make([]string, 0, maxTokens)

	for _, keyword := range keywords {
		words := strings.Fields(strings.ReplaceAll(keyword, "-", " "))
		for _, word := range words {
			clean := strings.Map(func(r rune) rune {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					return r
				}
				return -1
			}, word)
			if len([]rune(clean)) < 2 {
				continue
			}
			if _, dup := seen[clean]; dup {
				continue
			}
			seen[clean] = struct{}{}
			tokens = append(tokens, clean)
			if len(tokens) == maxTokens {
				return tokens
			}
		}
	}
	return tokens
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
