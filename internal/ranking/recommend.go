package ranking

import (
	"strings"
	"time"
)

// Recommendation weights.
const (
	followBonus   = 300
	maxLikeBonus  = 100
	maxRecency    = 120
	recencyPerDay = 4
	// missingAgeDays is the age assumed for posts without a timestamp; it is
	// large enough that the recency component is zero.
	missingAgeDays = 999
)

var labelWeights = weights{name: 120, category: 200}

// Profile is the caller context used for personalisation. A zero Profile
// (anonymous caller) still ranks by popularity and recency.
type Profile struct {
	// Labels must already be normalised with ParseLabels.
	Labels    []string
	Following []string
}

// Recommend scores every candidate for p and returns them best first.
// At most RecentWindow candidates are considered.
func Recommend(posts []Candidate, p Profile, now time.Time) []Result {
	following := make(map[string]struct{}, len(p.Following))
	for _, e := range p.Following {
		following[e] = struct{}{}
	}

	posts = window(posts)
	out := make([]Result, 0, len(posts))
	for _, c := range posts {
		out = append(out, Result{Candidate: c, Score: recommendScore(c, p.Labels, following, now)})
	}
	sortResults(out)
	return out
}

func recommendScore(c Candidate, labels []string, following map[string]struct{}, now time.Time) int {
	score := 0
	if _, ok := following[c.Owner]; ok {
		score += followBonus
	}

	f := fieldsOf(c)
	for _, l := range labels {
		if l == "" {
			continue
		}
		if strings.Contains(f.category, l) {
			score += labelWeights.category
		}
		if strings.Contains(f.name, l) {
			score += labelWeights.name
		}
	}

	score += min(max(c.Likes, 0), maxLikeBonus)
	score += RecencyBonus(c.CreatedAt, now)
	return score
}

// AgeDays is the whole number of 24h periods between createdAt and now.
// A zero createdAt yields the sentinel age of 999 days.
func AgeDays(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return missingAgeDays
	}
	return int(now.Sub(createdAt).Milliseconds() / (24 * time.Hour).Milliseconds())
}

// RecencyBonus is 120 minus 4 per day of age, bounded to [0, 120].
func RecencyBonus(createdAt, now time.Time) int {
	return min(max(maxRecency-recencyPerDay*AgeDays(createdAt, now), 0), maxRecency)
}
