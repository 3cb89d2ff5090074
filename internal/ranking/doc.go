// Package ranking scores and orders posts for the recommendation feed and for
// free-text search.
//
// Both rankers share one skeleton: a set of terms is matched as
// case-insensitive substrings against a post's name and category, each hit
// adds a weight from a table, and results are ordered by score, then by a
// position bonus, then by creation time (newest first, missing last).
// Recommend draws its terms from the caller's interest labels and adds
// follow, popularity and recency components. Search draws its single term from
// the query and turns matching into a hard filter.
//
// Everything here is pure: callers pass the current time and the candidate
// window, so results are deterministic.
package ranking
