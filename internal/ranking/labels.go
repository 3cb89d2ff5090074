package ranking

import "strings"

// labelSeparators are the delimiters users type between interest labels,
// including the CJK enumeration comma, full-width bar and ideographic space.
const labelSeparators = ",、/｜| 　"

// ParseLabels splits a free-text label field into lower-cased, de-duplicated
// terms in first-seen order. Empty pieces are dropped.
func ParseLabels(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(labelSeparators, r)
	})
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		l := strings.ToLower(strings.TrimSpace(p))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
