package fusion

import (
	"sort"

	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
)

const (
	VectorWeight  = 0.7
	LexicalWeight = 0.3
)

// Rank is a 0-based position in one source, or absent.
type Rank struct {
	pos int
	ok  bool
}

// At returns a present rank at the given 0-based position.
func At(pos int) Rank { return Rank{pos: pos, ok: true} }

// Absent returns the rank of a document missing from a source.
func Absent() Rank { return Rank{} }

// Position returns the 0-based position and whether the rank is present.
func (r Rank) Position() (int, bool) { return r.pos, r.ok }

// Score is the combined score of a candidate. Lower is better. An absent score sorts after every finite
// score and ties with every other absent score.
type Score struct {
	value  float64
	finite bool
}

// Combine weights the vector rank 0.7 and the lexical rank 0.3; if either is absent the score is absent.
func Combine(vector, lexical Rank) Score {
	if !vector.ok || !lexical.ok {
		return Score{}
	}
	return Score{value: VectorWeight*float64(vector.pos) + LexicalWeight*float64(lexical.pos), finite: true}
}

// Value returns the weighted score and false when the score is absent.
func (s Score) Value() (float64, bool) { return s.value, s.finite }

// Less reports whether s ranks strictly ahead of other.
func (s Score) Less(other Score) bool {
	switch {
	case s.finite && other.finite:
		return s.value < other.value
	case s.finite:
		return true
	default:
		return false
	}
}

// Candidate is one distinct document with its rank in each source.
type Candidate struct {
	Document    store.Document
	LexicalRank Rank
	VectorRank  Rank
	Score       Score
}

// Merge builds one candidate per distinct content id, sorted by combined score with insertion order
// (lexical entries first, then vector-only entries) breaking ties.
func Merge(lexical, vector []store.Document) []Candidate {
	candidates := make([]Candidate, 0, len(lexical)+len(vector))
	index := make(map[uuid.UUID]int, len(lexical)+len(vector))

	for pos, doc := range lexical {
		if _, dup := index[doc.ID]; dup {
			continue
		}
		index[doc.ID] = len(candidates)
		candidates = append(candidates, Candidate{
			Document:    doc,
			LexicalRank: At(pos),
			VectorRank:  Absent(),
		})
	}

	for pos, doc := range vector {
		if i, found := index[doc.ID]; found {
			if !candidates[i].VectorRank.ok {
				candidates[i].VectorRank = At(pos)
			}
			continue
		}
		index[doc.ID] = len(candidates)
		candidates = append(candidates, Candidate{
			Document:    doc,
			LexicalRank: Absent(),
			VectorRank:  At(pos),
		})
	}

	for i := range candidates {
		candidates[i].Score = Combine(candidates[i].VectorRank, candidates[i].LexicalRank)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score.Less(candidates[j].Score)
	})
	return candidates
}

// Fuse returns at most limit documents in fused order.
func Fuse(lexical, vector []store.Document, limit int) []store.Document {
	if limit <= 0 {
		return []store.Document{}
	}
	candidates := Merge(lexical, vector)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	docs := make([]store.Document, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Document
	}
	return docs
}
