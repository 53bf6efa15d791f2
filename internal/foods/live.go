package foods

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a query that a newer one replaced.
var ErrSuperseded = errors.New("search superseded by a newer query")

// LiveSearch runs Search for a stream of queries, such as keystrokes.
// Only the newest query may publish results; a failed query leaves the
// previous results in place.
type LiveSearch struct {
	resolver *Resolver

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	query   string
	results []Candidate
	err     error
}

func NewLiveSearch(r *Resolver) *LiveSearch {
	return &LiveSearch{resolver: r, results: []Candidate{}}
}

// Query searches q, cancelling any older query still in flight.
func (l *LiveSearch) Query(ctx context.Context, q string) ([]Candidate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	found, err := l.resolver.Search(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, ErrSuperseded
	}
	l.cancel = nil
	if err != nil {
		l.err = err
		return copyCandidates(l.results), err
	}
	l.query, l.results, l.err = q, found, nil
	return copyCandidates(found), nil
}

// Results returns the last published results, the query that produced
// them and the error of the newest query, if it failed.
func (l *LiveSearch) Results() (string, []Candidate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query, copyCandidates(l.results), l.err
}

func copyCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}
