package processor

import "sort"

// RankMode selects how admitted candidates are ordered.
type RankMode int

const (
	// RankFirstSeen keeps document order.
	RankFirstSeen RankMode = iota
	// RankMetricDesc sorts by Record.Metric, highest first, ties in input order.
	RankMetricDesc
)

// Rank returns the candidates in the order selected by mode. The input is not modified.
func Rank(cands []Candidate, mode RankMode) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	if mode == RankMetricDesc {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Record.Metric > out[j].Record.Metric
		})
	}
	return out
}

// Dedup drops candidates whose symbol key was already seen. First occurrence wins.
func Dedup(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := c.Symbol.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
