package ranking

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RecentWindow is the maximum number of most-recent posts either ranker
// considers. Callers fetch at most this many candidates.
const RecentWindow = 300

// Candidate is the subset of a post the rankers look at.
// A zero CreatedAt means the post has no timestamp.
type Candidate struct {
	ID        uuid.UUID
	Owner     string
	Name      string
	Category  string
	CreatedAt time.Time
	Likes     int
}

// Result is a scored candidate. PositionBonus is only populated by Search.
type Result struct {
	Candidate
	Score         int
	PositionBonus int
}

// weights is the per-field score table applied to every term hit.
type weights struct {
	name     int
	category int
}

// fields holds the lower-cased text a term is matched against.
type fields struct {
	name     string
	category string
}

func fieldsOf(c Candidate) fields {
	return fields{name: strings.ToLower(c.Name), category: strings.ToLower(c.Category)}
}

// runeIndex is strings.Index measured in characters rather than bytes, so
// positions inside CJK text count one per character. Returns -1 if absent.
func runeIndex(s, substr string) int {
	i := strings.Index(s, substr)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}

// positionBonus rewards an early hit: ceiling minus the hit index, never
// below zero.
func positionBonus(idx, ceiling int) int {
	return ceiling - min(idx, ceiling)
}

// sortResults orders by score desc, position bonus desc, then creation time
// desc with missing timestamps last. The sort is stable so equal entries keep
// their input order.
func sortResults(rs []Result) {
	slices.SortStableFunc(rs, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PositionBonus, a.PositionBonus); c != 0 {
			return c
		}
		return compareNewestFirst(a.CreatedAt, b.CreatedAt)
	})
}

func compareNewestFirst(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return b.Compare(a)
}

// window truncates posts to RecentWindow entries.
func window(posts []Candidate) []Candidate {
	if len(posts) > RecentWindow {
		return posts[:RecentWindow]
	}
	return posts
}
