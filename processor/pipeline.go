package processor

import (
	"errors"

	"watchlist/models"
)

// Report summarises what happened to the records of one pipeline run.
type Report struct {
	Input     int
	Malformed int
	Rejected  map[string]int
	Duplicate int
	Emitted   int
}

// Pipeline runs Parse, Classify, Rank/Dedup and Namespace for one profile.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	profile    Profile
	classifier *Classifier
	namespacer Namespacer
}

func NewPipeline(p Profile) *Pipeline {
	return &Pipeline{
		profile:    p,
		classifier: NewClassifier(p),
		namespacer: NewNamespacer(p),
	}
}

func (p *Pipeline) Profile() Profile {
	return p.profile
}

// Run converts records into a watchlist. It never fails: malformed symbols and
// rejected records are dropped and counted in the report.
func (p *Pipeline) Run(records []models.Record) (models.Watchlist, Report) {
	rep := Report{Input: len(records), Rejected: map[string]int{}}

	admitted := make([]Candidate, 0, len(records))
	for _, r := range records {
		ps, err := Parse(p.profile, r)
		if err != nil {
			if errors.Is(err, models.ErrMalformedSymbol) {
				rep.Malformed++
			}
			continue
		}
		cand := Candidate{Record: r, Symbol: ps}
		if ok, rule := p.classifier.Admit(cand); !ok {
			rep.Rejected[rule]++
			continue
		}
		admitted = append(admitted, cand)
	}

	ranked := Dedup(Rank(admitted, p.profile.Rank))
	rep.Duplicate = len(admitted) - len(ranked)

	out := make(models.Watchlist, 0, len(ranked))
	seen := make(map[models.CanonicalTicker]struct{}, len(ranked))
	for _, c := range ranked {
		t := p.namespacer.Format(c)
		if _, dup := seen[t]; dup {
			rep.Duplicate++
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	rep.Emitted = len(out)
	return out, rep
}

// Run is a convenience wrapper for one-off runs.
func Run(p Profile, records []models.Record) models.Watchlist {
	w, _ := NewPipeline(p).Run(records)
	return w
}
