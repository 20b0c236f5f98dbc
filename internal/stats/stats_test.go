package stats

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cyra/clf/internal/field"
	"github.com/cyra/clf/internal/parser"
)

var sampleLines = []string{
	`127.0.0.1 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1043 "-" "Mozilla/5.0"`,
	`10.0.0.7 - - [10/Oct/2023:13:56:01 +0000] "GET /missing HTTP/1.1" 404 210 "-" "Googlebot/2.1"`,
	`127.0.0.1 - - [10/Oct/2023:15:00:00 +0200] "POST /login HTTP/1.1" 302 - "-" "curl/8.0"`,
	`10.0.0.8 - - [10/Oct/2023:08:30:00 -0500] "GET /index.html HTTP/1.1" 200 5000 "-" "Mozilla/5.0"`,
}

func records(t *testing.T, lines ...string) []*parser.Record {
	t.Helper()
	var out []*parser.Record
	for _, l := range lines {
		r, err := parser.Parse(l)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, r)
	}
	return out
}

func job(t *testing.T, args ...string) Job {
	t.Helper()
	j, err := ParseJob(args)
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func TestCountTwoStatuses(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines[0], sampleLines[1])
	res, err := Run(slices.Values(recs), job(t, "count", "status"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Group{{"200", 1}, {"404", 1}}
	if diff := cmp.Diff(want, res[0].Groups); diff != "" {
		t.Error(diff)
	}
}

func TestCountPartitionsInput(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines...)
	for _, name := range field.Names() {
		res, err := Run(slices.Values(recs), job(t, "count", name))
		if err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		total := 0
		for _, g := range res[0].Groups {
			total += g.Count
		}
		if total != len(recs) {
			t.Errorf("count %s: groups sum to %d, want %d", name, total, len(recs))
		}
	}
}

func TestCountOrdering(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines...)
	res, err := Run(slices.Values(recs), job(t, "count", "host"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Group{{"127.0.0.1", 2}, {"10.0.0.7", 1}, {"10.0.0.8", 1}}
	if diff := cmp.Diff(want, res[0].Groups); diff != "" {
		t.Error(diff)
	}
}

func TestSetIsDistinct(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines...)
	res, err := Run(slices.Values(recs), job(t, "set", "uri"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/index.html", "/login", "/missing"}
	if diff := cmp.Diff(want, res[0].Values); diff != "" {
		t.Error(diff)
	}
}

func TestSumAndAvg(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines...)
	res, err := Run(slices.Values(recs), job(t, "sum", "bytes", "avg", "bytes", "count", "bytes"))
	if err != nil {
		t.Fatal(err)
	}
	sum, avg := res[0].Scalar, res[1].Scalar
	if sum.Kind() != field.KindInt || sum.Int() != 1043+210+0+5000 {
		t.Errorf("sum(bytes) = %v (%v)", sum, sum.Kind())
	}
	if avg.Kind() != field.KindFloat {
		t.Errorf("avg(bytes) kind = %v, want float", avg.Kind())
	}
	n := 0
	for _, g := range res[2].Groups {
		n += g.Count
	}
	if math.Abs(avg.Float()*float64(n)-sum.Float()) > 1e-9 {
		t.Errorf("avg*count = %v, want %v", avg.Float()*float64(n), sum.Float())
	}
}

func TestMaxMin(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines...)
	res, err := Run(slices.Values(recs), job(t,
		"max", "status", "min", "status",
		"max", "date", "min", "date",
		"min", "utcoffset"))
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(res))
	for i, r := range res {
		got[i] = r.Scalar.String()
	}
	// 08:30 -0500 is 13:30 UTC and 15:00 +0200 is 13:00 UTC, so the latest
	// instant is 13:56:01 UTC and the earliest is 13:00 UTC.
	want := []string{
		"404", "200",
		"10/Oct/2023:13:56:01 +0000", "10/Oct/2023:15:00:00 +0200",
		"-300",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()
	for _, op := range []string{"avg", "sum", "max", "min"} {
		_, err := Run(slices.Values([]*parser.Record{}), job(t, op, "bytes"))
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("%s over no records: error = %v, want ErrEmptyInput", op, err)
		}
	}
	res, err := Run(slices.Values([]*parser.Record{}), job(t, "count", "host", "set", "host"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res[0].Groups) != 0 || len(res[1].Values) != 0 {
		t.Errorf("want empty count and set, got %+v", res)
	}
}

func TestEmptyInputKeepsOtherPairs(t *testing.T) {
	t.Parallel()
	res, err := Run(slices.Values([]*parser.Record{}), job(t, "avg", "bytes", "count", "status", "max", "date", "set", "host"))
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput, got %v", err)
	}
	for _, name := range []string{"avg(bytes)", "max(date)"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
	var buf bytes.Buffer
	if err := Write(&buf, res); err != nil {
		t.Fatal(err)
	}
	want := "# count(status)\n# set(host)\n"
	if got := buf.String(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestParseJobRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"avg", "host"}, ErrType},
		{[]string{"sum", "date"}, ErrType},
		{[]string{"max", "user_agent"}, ErrType},
		{[]string{"median", "bytes"}, ErrUnknownOperator},
		{[]string{"count", "nope"}, field.ErrUnknownField},
	}
	for _, tt := range tests {
		_, err := ParseJob(tt.args)
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseJob(%q) error = %v, want %v", tt.args, err, tt.want)
		}
	}
	if _, err := ParseJob([]string{"count"}); err == nil {
		t.Error("ParseJob with a dangling operator should fail")
	}
	if _, err := ParseJob(nil); err == nil {
		t.Error("ParseJob with no arguments should fail")
	}
}

func TestAggregatorResultsRepeatable(t *testing.T) {
	t.Parallel()
	a := NewAggregator(job(t, "count", "method", "max", "bytes"))
	for _, r := range records(t, sampleLines...) {
		a.Add(r)
	}
	if a.Records() != len(sampleLines) {
		t.Errorf("Records() = %d, want %d", a.Records(), len(sampleLines))
	}
	render := func() string {
		res, err := a.Results()
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := Write(&buf, res); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if first, second := render(), render(); first != second {
		t.Errorf("Results is not repeatable: %q then %q", first, second)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()
	recs := records(t, sampleLines[0], sampleLines[1])
	res, err := Run(slices.Values(recs), job(t, "count", "status", "set", "method", "avg", "bytes"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, res); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"# count(status)",
		"200\t1",
		"404\t1",
		"# set(method)",
		"GET",
		"# avg(bytes)",
		"626.5",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
