package stats

import (
	"cmp"
	"errors"
	"iter"
	"slices"

	"github.com/samber/lo"

	"github.com/cyra/clf/internal/field"
	"github.com/cyra/clf/internal/parser"
)

// Group is one row of a count result.
type Group struct {
	Value string
	Count int
}

// Result is the outcome of one Pair. Exactly one of Groups, Values or Scalar
// is meaningful, depending on Op.
type Result struct {
	Pair   Pair
	Groups []Group
	Values []string
	Scalar field.Value
}

type reducer interface {
	add(v field.Value)
	result(p Pair) (Result, error)
}

func newReducer(op Op) reducer {
	switch op {
	case Count, Set:
		return &counter{seen: map[string]int{}}
	case Avg, Sum:
		return &summer{}
	default:
		return &extremum{}
	}
}

type counter struct {
	seen map[string]int
}

func (c *counter) add(v field.Value) {
	c.seen[v.String()]++
}

func (c *counter) result(p Pair) (Result, error) {
	if p.Op == Set {
		values := lo.Keys(c.seen)
		slices.Sort(values)
		return Result{Pair: p, Values: values}, nil
	}
	groups := lo.MapToSlice(c.seen, func(v string, n int) Group { return Group{Value: v, Count: n} })
	slices.SortFunc(groups, func(a, b Group) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return Result{Pair: p, Groups: groups}, nil
}

type summer struct {
	n    int
	isum int64
	fsum float64
}

func (s *summer) add(v field.Value) {
	s.n++
	if v.Kind() == field.KindInt {
		s.isum += v.Int()
	} else {
		s.fsum += v.Float()
	}
}

func (s *summer) total(k field.Kind) field.Value {
	if k == field.KindInt {
		return field.Int(s.isum)
	}
	return field.Float(s.fsum)
}

func (s *summer) result(p Pair) (Result, error) {
	if s.n == 0 {
		return Result{}, &EmptyInputError{Op: p.Op, Field: p.Field.Name}
	}
	total := s.total(p.Field.Kind)
	if p.Op == Sum {
		return Result{Pair: p, Scalar: total}, nil
	}
	return Result{Pair: p, Scalar: field.Float(total.Float() / float64(s.n))}, nil
}

type extremum struct {
	seen bool
	max  field.Value
	min  field.Value
}

func (e *extremum) add(v field.Value) {
	if !e.seen {
		e.seen, e.max, e.min = true, v, v
		return
	}
	if field.Compare(v, e.max) > 0 {
		e.max = v
	}
	if field.Compare(v, e.min) < 0 {
		e.min = v
	}
}

func (e *extremum) result(p Pair) (Result, error) {
	if !e.seen {
		return Result{}, &EmptyInputError{Op: p.Op, Field: p.Field.Name}
	}
	if p.Op == Max {
		return Result{Pair: p, Scalar: e.max}, nil
	}
	return Result{Pair: p, Scalar: e.min}, nil
}

// Aggregator runs every pair of a Job over a record stream in a single pass.
// Each pair has its own accumulator, so the results equal independent passes.
type Aggregator struct {
	job      Job
	reducers []reducer
	records  int
}

// NewAggregator returns an Aggregator with empty accumulators.
func NewAggregator(job Job) *Aggregator {
	a := &Aggregator{job: job}
	for _, p := range job.Pairs {
		a.reducers = append(a.reducers, newReducer(p.Op))
	}
	return a
}

// Add feeds one record to every accumulator.
func (a *Aggregator) Add(r *parser.Record) {
	a.records++
	for i, p := range a.job.Pairs {
		a.reducers[i].add(p.Field.Value(r))
	}
}

// Records returns how many records have been added.
func (a *Aggregator) Records() int {
	return a.records
}

// Results finalizes every pair in job order. A scalar reduction with no input
// contributes an *EmptyInputError instead of a result; the other pairs are
// unaffected and the errors are joined.
func (a *Aggregator) Results() ([]Result, error) {
	results := make([]Result, 0, len(a.reducers))
	var errs []error
	for i, p := range a.job.Pairs {
		res, err := a.reducers[i].result(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Run reduces the whole sequence and returns the results.
func Run(records iter.Seq[*parser.Record], job Job) ([]Result, error) {
	a := NewAggregator(job)
	for r := range records {
		a.Add(r)
	}
	return a.Results()
}
