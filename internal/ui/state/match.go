package state

import (
	"math"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match filters items by query and picks the entry the cursor should land
// on. Items keep their original order. Labels are matched fuzzily; when no
// label matches, a plain substring of the label or id is accepted. best is an
// index into matched, or -1 when matched is empty.
func Match(items []menu.Item, query string) (matched []menu.Item, best int) {
	q := strings.TrimSpace(query)
	if q == "" {
		matched = append([]menu.Item(nil), items...)
		if len(matched) == 0 {
			return matched, -1
		}
		return matched, 0
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	distance := make(map[int]int)
	for _, rank := range fuzzy.RankFindNormalizedFold(q, labels) {
		distance[rank.OriginalIndex] = rank.Distance
	}

	lower := strings.ToLower(q)
	best = -1
	bestScore := math.MaxInt
	for i, item := range items {
		d, fuzzyHit := distance[i]
		if len(distance) > 0 && !fuzzyHit {
			continue
		}
		if len(distance) == 0 && !containsFold(item.Label, lower) && !containsFold(item.ID, lower) {
			continue
		}
		if s := score(item, lower, d); s < bestScore {
			bestScore = s
			best = len(matched)
		}
		matched = append(matched, item)
	}
	return matched, best
}

// score ranks a matching item, lower is better: exact match, label prefix,
// id prefix, id substring, label substring, then fuzzy distance.
func score(item menu.Item, lower string, distance int) int {
	label := strings.ToLower(item.Label)
	id := strings.ToLower(item.ID)
	switch {
	case label == lower || id == lower:
		return 0
	case strings.HasPrefix(label, lower):
		return 1
	case strings.HasPrefix(id, lower):
		return 2
	case strings.Contains(id, lower):
		return 3
	case strings.Contains(label, lower):
		return 4
	}
	return 5 + distance
}

func containsFold(s, lower string) bool {
	return strings.Contains(strings.ToLower(s), lower)
}
