package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Combined log format example:
// 127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326 "http://example.com/start.html" "Mozilla/4.08"
//
// The trailing referer and user agent pair is optional, so plain common log
// format lines parse too.

// TimeLayout is the layout of the bracketed date field.
const TimeLayout = "02/Jan/2006:15:04:05 -0700"

const dateLayout = "02/Jan/2006:15:04:05"

// ErrFormat is matched by every *ParseError.
var ErrFormat = errors.New("not in combined log format")

// ParseError reports a line that does not match the grammar.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("not in combined log format: %s: %q", e.Reason, e.Line)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrFormat
}

// Record is one parsed access log line. Records are never modified after Parse
// returns them.
type Record struct {
	Host     string
	Identity string
	User     string
	Date     time.Time
	Offset   int // minutes east of UTC
	Request  string
	Status   int
	Bytes    int64

	Referer   string
	UserAgent string

	// Derived from Request. All three are empty unless Request has exactly
	// three whitespace-separated parts.
	Method   string
	URI      string
	Protocol string

	Raw string
}

// String reconstructs a combined log format line from the record.
func (r *Record) String() string {
	return fmt.Sprintf(`%s %s %s [%s] "%s" %d %d "%s" "%s"`,
		r.Host, r.Identity, r.User, r.Date.Format(TimeLayout),
		r.Request, r.Status, r.Bytes, r.Referer, r.UserAgent)
}

// Parse converts a raw log line into a Record.
func Parse(line string) (*Record, error) {
	s := scanner{data: strings.TrimRight(line, " \t\r\n")}
	fail := func(reason string) (*Record, error) {
		return nil, &ParseError{Line: line, Reason: reason}
	}

	r := &Record{Raw: line}
	var ok bool
	if r.Host, ok = s.field(); !ok {
		return fail("missing host")
	}
	if r.Identity, ok = s.field(); !ok {
		return fail("missing identity")
	}
	if r.User, ok = s.field(); !ok {
		return fail("missing user")
	}

	rawDate, ok := s.enclosed('[', ']')
	if !ok {
		return fail("missing or unterminated [date]")
	}
	date, offset, err := parseDate(rawDate)
	if err != nil {
		return fail(err.Error())
	}
	r.Date, r.Offset = date, offset

	if r.Request, ok = s.enclosed('"', '"'); !ok {
		return fail("missing or unterminated \"request\"")
	}
	r.Method, r.URI, r.Protocol = splitRequest(r.Request)

	status, ok := s.field()
	if !ok {
		return fail("missing status")
	}
	if r.Status, err = parseUint(status); err != nil {
		return fail(fmt.Sprintf("parse status %q: %v", status, err))
	}

	bytes, ok := s.field()
	if !ok {
		return fail("missing bytes")
	}
	if bytes != "-" {
		n, err := parseUint(bytes)
		if err != nil {
			return fail(fmt.Sprintf("parse bytes %q: %v", bytes, err))
		}
		r.Bytes = int64(n)
	}

	if s.done() {
		return r, nil
	}
	if r.Referer, ok = s.enclosed('"', '"'); !ok {
		return fail("malformed \"referer\"")
	}
	if r.UserAgent, ok = s.enclosed('"', '"'); !ok {
		return fail("malformed \"user_agent\"")
	}
	if !s.done() {
		return fail("trailing data after user_agent")
	}
	return r, nil
}

// parseDate parses `dd/Mon/yyyy:HH:MM:SS +HHMM` into a time in a fixed zone
// plus the signed offset in minutes.
func parseDate(raw string) (time.Time, int, error) {
	stamp, zone, found := strings.Cut(raw, " ")
	if !found {
		return time.Time{}, 0, fmt.Errorf("date %q has no UTC offset", raw)
	}
	offset, err := parseOffset(zone)
	if err != nil {
		return time.Time{}, 0, err
	}
	t, err := time.ParseInLocation(dateLayout, stamp, time.FixedZone("", offset*60))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("parse time: %w", err)
	}
	return t, offset, nil
}

func parseOffset(zone string) (int, error) {
	if len(zone) != 5 || (zone[0] != '+' && zone[0] != '-') || !isDigits(zone[1:]) {
		return 0, fmt.Errorf("bad UTC offset %q", zone)
	}
	hh, _ := strconv.Atoi(zone[1:3])
	mm, _ := strconv.Atoi(zone[3:5])
	if mm > 59 {
		return 0, fmt.Errorf("bad UTC offset %q", zone)
	}
	offset := hh*60 + mm
	if zone[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

func parseUint(s string) (int, error) {
	if !isDigits(s) {
		return 0, fmt.Errorf("not a non-negative integer")
	}
	return strconv.Atoi(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitRequest breaks a request line into method, URI and protocol.
func splitRequest(request string) (method, uri, protocol string) {
	parts := strings.Fields(request)
	if len(parts) != 3 {
		return "", "", ""
	}
	return parts[0], parts[1], parts[2]
}
