// Package stats reduces streams of parsed log records to grouped or scalar
// results.
package stats

import (
	"errors"
	"fmt"

	"github.com/cyra/clf/internal/field"
)

// Op is a reduction applied to one field.
type Op int

const (
	Count Op = iota
	Set
	Avg
	Max
	Min
	Sum
)

var ops = []struct {
	name string
	desc string
}{
	Count: {"count", "Count lines, grouped by field"},
	Set:   {"set", "Extract unique field values"},
	Avg:   {"avg", "Compute the average of a numeric field"},
	Max:   {"max", "Find the maximum field value"},
	Min:   {"min", "Find the minimum field value"},
	Sum:   {"sum", "Add numeric field values"},
}

var (
	// ErrUnknownOperator is returned for an operator name that is not in Ops.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrEmptyInput is matched by *EmptyInputError.
	ErrEmptyInput = errors.New("no input records")
	// ErrType is matched by *TypeError.
	ErrType = errors.New("operator not applicable to field type")
)

func (o Op) String() string {
	if int(o) < len(ops) {
		return ops[o].name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Description is a one-line summary for usage output.
func (o Op) Description() string {
	if int(o) < len(ops) {
		return ops[o].desc
	}
	return ""
}

// Ops lists every operator in usage order.
func Ops() []Op {
	return []Op{Count, Set, Avg, Max, Min, Sum}
}

// ParseOp resolves an operator name.
func ParseOp(name string) (Op, error) {
	for _, o := range Ops() {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownOperator, name)
}

// accepts reports whether the operator can reduce values of kind k.
func (o Op) accepts(k field.Kind) bool {
	switch o {
	case Avg, Sum:
		return k.Numeric()
	case Max, Min:
		return k.Ordered()
	default:
		return true
	}
}

// TypeError reports an operator applied to a field of the wrong kind.
type TypeError struct {
	Op    Op
	Field field.Field
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s(%s): not applicable to %s field", e.Op, e.Field.Name, e.Field.Kind)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrType
}

// EmptyInputError reports a scalar reduction over zero records.
type EmptyInputError struct {
	Op    Op
	Field string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s(%s): no input records", e.Op, e.Field)
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// Pair is one (operator, field) request.
type Pair struct {
	Op    Op
	Field field.Field
}

func (p Pair) String() string {
	return fmt.Sprintf("%s(%s)", p.Op, p.Field.Name)
}

// Job is an ordered list of reductions, validated before any input is read.
type Job struct {
	Pairs []Pair
}

// NewJob validates the pairs and returns a Job.
func NewJob(pairs ...Pair) (Job, error) {
	if len(pairs) == 0 {
		return Job{}, errors.New("no operations requested")
	}
	for _, p := range pairs {
		if !p.Op.accepts(p.Field.Kind) {
			return Job{}, &TypeError{Op: p.Op, Field: p.Field}
		}
	}
	return Job{Pairs: pairs}, nil
}

// ParseJob builds a Job from alternating operator and field arguments, as
// given on the command line.
func ParseJob(args []string) (Job, error) {
	if len(args)%2 != 0 {
		return Job{}, fmt.Errorf("operator %q has no field", args[len(args)-1])
	}
	pairs := make([]Pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		op, err := ParseOp(args[i])
		if err != nil {
			return Job{}, err
		}
		f, err := field.Lookup(args[i+1])
		if err != nil {
			return Job{}, err
		}
		pairs = append(pairs, Pair{Op: op, Field: f})
	}
	return NewJob(pairs...)
}
