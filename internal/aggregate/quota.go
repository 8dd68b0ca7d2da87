// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate runs the fetch-merge-rank pipeline: split a result
// budget across sources, fetch from all of them concurrently, and order
// the merged candidates by TF-IDF similarity to the query.
package aggregate

import "github.com/pdiddy/aihub/internal/source"

// Quota maps each active source to the number of results it is asked for.
type Quota map[source.ID]int

// Total returns the sum of all per-source limits.
func (q Quota) Total() int {
	n := 0
	for _, v := range q {
		n += v
	}
	return n
}

// Allocate splits total across sources. Every source gets total/len(sources);
// the remainder goes one unit at a time to the first sources in the given
// order. The values always sum to total. A negative total is treated as 0
// and an empty source list yields an empty Quota.
func Allocate(total int, sources []source.ID) Quota {
	q := make(Quota, len(sources))
	if len(sources) == 0 {
		return q
	}
	if total < 0 {
		total = 0
	}

	base, rem := total/len(sources), total%len(sources)
	for i, id := range sources {
		share := base
		if i < rem {
			share++
		}
		q[id] += share
	}
	return q
}
