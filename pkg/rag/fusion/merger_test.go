package fusion

import (
	"testing"

	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(ids ...uuid.UUID) []store.Document {
	out := make([]store.Document, len(ids))
	for i, id := range ids {
		out[i] = store.Document{ID: id}
	}
	return out
}

func TestFuse(t *testing.T) {
	a, b, c, d, e := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name    string
		lexical []store.Document
		vector  []store.Document
		limit   int
		want    []uuid.UUID
	}{
		{
			name:    "items in both sources rank ahead of single-source items",
			lexical: docs(a, b, c),
			vector:  docs(d, c, b),
			limit:   5,
			// b: 0.7*2+0.3*1=1.7, c: 0.7*1+0.3*2=1.3; a then d by insertion order
			want: []uuid.UUID{c, b, a, d},
		},
		{
			name:    "single-source ties keep lexical then vector order",
			lexical: docs(a, b),
			vector:  docs(c, d),
			limit:   4,
			want:    []uuid.UUID{a, b, c, d},
		},
		{
			name:    "truncates to limit",
			lexical: docs(a, b, c),
			vector:  docs(c, d, e),
			limit:   2,
			want:    []uuid.UUID{c, a},
		},
		{
			name:    "vector only",
			lexical: nil,
			vector:  docs(d, e),
			limit:   3,
			want:    []uuid.UUID{d, e},
		},
		{
			name:    "both empty",
			limit:   3,
			want:    []uuid.UUID{},
		},
		{
			name:    "zero limit",
			lexical: docs(a),
			limit:   0,
			want:    []uuid.UUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fuse(tt.lexical, tt.vector, tt.limit)
			assert.Equal(t, tt.want, store.IDs(got))
		})
	}
}

func TestFuseLengthIsMinOfLimitAndDistinct(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	lexical := docs(a, b, a)
	vector := docs(b, c, c)

	for limit := 1; limit <= 5; limit++ {
		got := Fuse(lexical, vector, limit)
		want := limit
		if want > 3 {
			want = 3
		}
		assert.Len(t, got, want)
		seen := map[uuid.UUID]bool{}
		for _, d := range got {
			assert.False(t, seen[d.ID], "duplicate id in output")
			seen[d.ID] = true
		}
	}
}

func TestMergeUpdatesVectorRankInPlace(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	candidates := Merge(docs(a, b), docs(b))

	require.Len(t, candidates, 2)
	assert.Equal(t, b, candidates[0].Document.ID)
	lexPos, lexOK := candidates[0].LexicalRank.Position()
	vecPos, vecOK := candidates[0].VectorRank.Position()
	assert.True(t, lexOK)
	assert.True(t, vecOK)
	assert.Equal(t, 1, lexPos)
	assert.Equal(t, 0, vecPos)
	score, finite := candidates[0].Score.Value()
	assert.True(t, finite)
	assert.InDelta(t, 0.3, score, 1e-9)

	_, finite = candidates[1].Score.Value()
	assert.False(t, finite)
}

func TestCombineIsMonotonic(t *testing.T) {
	for v := 0; v < 6; v++ {
		for l := 0; l < 6; l++ {
			base := Combine(At(v), At(l))
			if v > 0 {
				assert.False(t, base.Less(Combine(At(v-1), At(l))), "earlier vector rank must not score worse")
			}
			if l > 0 {
				assert.False(t, base.Less(Combine(At(v), At(l-1))), "earlier lexical rank must not score worse")
			}
			assert.True(t, base.Less(Combine(Absent(), At(l))))
			assert.True(t, base.Less(Combine(At(v), Absent())))
		}
	}
}

func TestAbsentScoresTie(t *testing.T) {
	x := Combine(At(0), Absent())
	y := Combine(Absent(), At(9))

	assert.False(t, x.Less(y))
	assert.False(t, y.Less(x))
}
