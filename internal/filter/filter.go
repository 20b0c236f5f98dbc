// Package filter decides whether a parsed log record passes a field
// predicate such as `status=404` or `!*user_agent~bot`.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cyra/clf/internal/field"
	"github.com/cyra/clf/internal/parser"
)

// Op is the comparison applied to the field's string form.
type Op byte

const (
	Equal Op = '='
	Match Op = '~'
)

var (
	ErrSyntax  = errors.New("malformed filter expression")
	ErrPattern = errors.New("invalid pattern")
)

// PatternError reports a regular expression that does not compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

func (e *PatternError) Is(target error) bool {
	return target == ErrPattern
}

// Predicate is a compiled field comparison.
type Predicate struct {
	Field  field.Field
	Op     Op
	Value  string
	Negate bool
	NoCase bool

	re *regexp.Regexp
}

// New compiles a predicate on the named field.
func New(name string, op Op, value string, negate, nocase bool) (*Predicate, error) {
	f, err := field.Lookup(name)
	if err != nil {
		return nil, err
	}
	p := &Predicate{Field: f, Op: op, Value: value, Negate: negate, NoCase: nocase}
	switch op {
	case Equal:
	case Match:
		pattern := value
		if nocase {
			pattern = "(?i)" + pattern
		}
		p.re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, &PatternError{Pattern: value, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrSyntax, op)
	}
	return p, nil
}

// Match reports whether r passes the predicate.
func (p *Predicate) Match(r *parser.Record) bool {
	s := p.Field.Value(r).String()
	var ok bool
	switch {
	case p.Op == Match:
		ok = p.re.MatchString(s)
	case p.NoCase:
		ok = strings.ToLower(s) == strings.ToLower(p.Value)
	default:
		ok = s == p.Value
	}
	return ok != p.Negate
}

// String renders the predicate in the infix expression form.
func (p *Predicate) String() string {
	var b strings.Builder
	b.WriteString(p.Field.Name)
	if p.Negate {
		b.WriteByte('!')
	}
	if p.NoCase {
		b.WriteByte('*')
	}
	b.WriteByte(byte(p.Op))
	b.WriteString(p.Value)
	return b.String()
}

var exprRe = regexp.MustCompile(`^\s*(!?)(\*?)([a-z_]+)\s*(!?)(\*?)([=~])\s*(.*)$`)

// Parse compiles a filter expression. Modifiers may precede the field name
// (`!*field=value`) or the operator (`field!*=value`), always with ! before *.
// The value is the remainder of the expression and may contain spaces.
func Parse(expr string) (*Predicate, error) {
	m := exprRe.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, expr)
	}
	if (m[1] != "" && m[4] != "") || (m[2] != "" && m[5] != "") {
		return nil, fmt.Errorf("%w: repeated modifier in %q", ErrSyntax, expr)
	}
	negate := m[1] != "" || m[4] != ""
	nocase := m[2] != "" || m[5] != ""
	return New(m[3], Op(m[6][0]), m[7], negate, nocase)
}
