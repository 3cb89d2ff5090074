package ranking

import "strings"

// MapToken is the word for "map" in the product's locale. A query containing
// it also matches posts that mention the token but not the rest of the query.
const MapToken = "地圖"

var (
	queryWeights = weights{name: 200, category: 180}
	tokenWeights = weights{name: 60, category: 50}

	queryBonusCeiling = weights{name: 100, category: 60}
	tokenBonusCeiling = 20
)

// Search filters candidates against query and returns the qualifying ones
// best first. A blank query matches nothing. At most RecentWindow candidates
// are considered.
func Search(posts []Candidate, query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Result{}
	}
	tokenQuery := strings.Contains(q, MapToken)

	posts = window(posts)
	out := make([]Result, 0, len(posts))
	for _, c := range posts {
		if r, ok := searchScore(c, q, tokenQuery); ok {
			out = append(out, r)
		}
	}
	sortResults(out)
	return out
}

// searchScore returns the scored candidate and whether it qualifies.
func searchScore(c Candidate, q string, tokenQuery bool) (Result, bool) {
	f := fieldsOf(c)
	r := Result{Candidate: c}

	nameIdx := runeIndex(f.name, q)
	catIdx := runeIndex(f.category, q)
	if nameIdx >= 0 {
		r.Score += queryWeights.name
		r.PositionBonus += positionBonus(nameIdx, queryBonusCeiling.name)
	}
	if catIdx >= 0 {
		r.Score += queryWeights.category
		r.PositionBonus += positionBonus(catIdx, queryBonusCeiling.category)
	}
	if nameIdx >= 0 || catIdx >= 0 {
		return r, true
	}

	if !tokenQuery {
		return Result{}, false
	}
	if idx := runeIndex(f.name, MapToken); idx >= 0 {
		r.Score += tokenWeights.name
		r.PositionBonus += positionBonus(idx, tokenBonusCeiling)
		return r, true
	}
	if idx := runeIndex(f.category, MapToken); idx >= 0 {
		r.Score += tokenWeights.category
		r.PositionBonus += positionBonus(idx, tokenBonusCeiling)
		return r, true
	}
	return Result{}, false
}
