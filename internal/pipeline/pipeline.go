package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cyra/clf/internal/config"
	"github.com/cyra/clf/internal/logging"
	"github.com/cyra/clf/internal/logtail"
	"github.com/cyra/clf/internal/parser"
)

const maxLineSize = 1 << 20

// ErrLineTooLong reports a line longer than the 1 MiB limit.
var ErrLineTooLong = errors.New("line too long")

// Handler receives each record that parsed. Returning an error stops the run.
type Handler func(*parser.Record) error

// Runner turns lines into records and applies the configured policy to lines
// that do not parse: skip them with a warning, or abort the run.
type Runner struct {
	store   *config.Store
	logger  *logging.Logger
	skipped int
}

// New returns a Runner reading its policy from store, so a reloaded config
// takes effect on the next line.
func New(store *config.Store, logger *logging.Logger) *Runner {
	return &Runner{store: store, logger: logger}
}

// Skipped returns how many lines failed to parse so far.
func (p *Runner) Skipped() int {
	return p.skipped
}

// Scan reads src line by line until EOF. name labels warnings. A line longer
// than maxLineSize is handled like a line that does not parse.
func (p *Runner) Scan(ctx context.Context, name string, src io.Reader, h Handler) error {
	br := bufio.NewReaderSize(src, 64*1024)
	n := 0
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		if tooLong {
			err = p.reject(name, n, fmt.Errorf("%w (limit %d bytes)", ErrLineTooLong, maxLineSize))
		} else {
			err = p.handle(name, n, line, h)
		}
		if err != nil {
			return err
		}
	}
}

// readLine returns the next line without its "\n". A trailing "\r" is kept so
// the raw line can be written back unchanged. The rest of a line longer than
// maxLineSize is discarded and reported as too long. io.EOF is returned only
// when no bytes remain.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	read, tooLong := false, false
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch err {
		case nil:
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if !read {
				return "", false, io.EOF
			}
		default:
			return "", false, err
		}
		return strings.TrimSuffix(string(buf), "\n"), tooLong, nil
	}
}

// ScanInputs scans the named files in order, or stdin when names is empty,
// decompressing each according to the configured compression.
func (p *Runner) ScanInputs(ctx context.Context, names []string, stdin io.Reader, h Handler) error {
	compression := p.store.Current().Input.Compression
	if len(names) == 0 {
		src, err := Decompress(stdin, compression)
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		defer src.Close()
		return p.Scan(ctx, "stdin", src, h)
	}
	for _, name := range names {
		src, err := Open(name, compression)
		if err != nil {
			return err
		}
		err = p.Scan(ctx, name, src, h)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Follow tails path, handling existing lines and then new ones as they are
// appended, until ctx is canceled or h fails.
func (p *Runner) Follow(ctx context.Context, path string, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := logtail.New(path, p.store.Current().Follow, p.logger)
	lines := make(chan string, 100)
	errc := make(chan error, 1)

	go func() {
		errc <- t.Tail(ctx, lines)
		close(lines)
	}()

	n := 0
	for line := range lines {
		n++
		if err := p.handle(path, n, line, h); err != nil {
			cancel()
			for range lines {
			}
			<-errc
			return err
		}
	}
	return <-errc
}

func (p *Runner) handle(name string, n int, line string, h Handler) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	rec, err := parser.Parse(line)
	if err != nil {
		return p.reject(name, n, err)
	}
	return h(rec)
}

// reject applies the on_error policy to a line that cannot become a record.
func (p *Runner) reject(name string, n int, err error) error {
	p.skipped++
	if p.store.Current().Input.OnError == config.OnErrorAbort {
		return fmt.Errorf("%s:%d: %w", name, n, err)
	}
	p.logger.Warnf("%s:%d: skipping line: %v", name, n, err)
	return nil
}
