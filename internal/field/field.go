// Package field maps field names to typed values extracted from parsed log
// records. The registry is fixed and shared by every tool.
package field

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/cyra/clf/internal/parser"
)

// ErrUnknownField is matched by every *UnknownFieldError.
var ErrUnknownField = errors.New("unknown field")

// UnknownFieldError reports a field name missing from the registry.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q (available fields: %s)", e.Name, strings.Join(Names(), ", "))
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// Field is a named, typed accessor into a Record.
type Field struct {
	Name    string
	Kind    Kind
	extract func(*parser.Record) Value
}

// Value extracts the field from r.
func (f Field) Value(r *parser.Record) Value {
	return f.extract(r)
}

func str(get func(*parser.Record) string) func(*parser.Record) Value {
	return func(r *parser.Record) Value { return String(get(r)) }
}

var registry = []Field{
	{"host", KindString, str(func(r *parser.Record) string { return r.Host })},
	{"identity", KindString, str(func(r *parser.Record) string { return r.Identity })},
	{"user", KindString, str(func(r *parser.Record) string { return r.User })},
	{"date", KindTime, func(r *parser.Record) Value { return Time(r.Date) }},
	{"request", KindString, str(func(r *parser.Record) string { return r.Request })},
	{"status", KindInt, func(r *parser.Record) Value { return Int(int64(r.Status)) }},
	{"bytes", KindInt, func(r *parser.Record) Value { return Int(r.Bytes) }},
	{"referer", KindString, str(func(r *parser.Record) string { return r.Referer })},
	{"user_agent", KindString, str(func(r *parser.Record) string { return r.UserAgent })},
	{"method", KindString, str(func(r *parser.Record) string { return r.Method })},
	{"uri", KindString, str(func(r *parser.Record) string { return r.URI })},
	{"protocol", KindString, str(func(r *parser.Record) string { return r.Protocol })},
	{"utcoffset", KindInt, func(r *parser.Record) Value { return Int(int64(r.Offset)) }},
}

var byName = lo.KeyBy(registry, func(f Field) string { return f.Name })

// Lookup returns the registered field called name.
func Lookup(name string) (Field, error) {
	f, ok := byName[name]
	if !ok {
		return Field{}, &UnknownFieldError{Name: name}
	}
	return f, nil
}

// ValueOf extracts the named field from r.
func ValueOf(r *parser.Record, name string) (Value, error) {
	f, err := Lookup(name)
	if err != nil {
		return Value{}, err
	}
	return f.Value(r), nil
}

// Names lists the registered field names in registry order.
func Names() []string {
	return lo.Map(registry, func(f Field, _ int) string { return f.Name })
}
