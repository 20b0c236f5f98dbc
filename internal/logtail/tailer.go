package logtail

import (
	"context"

	"github.com/hpcloud/tail"

	"github.com/cyra/clf/internal/config"
	"github.com/cyra/clf/internal/logging"
)

// Tailer streams lines from a log file as they are written, starting from the
// first line already in the file.
type Tailer struct {
	path   string
	cfg    config.FollowConfig
	logger *logging.Logger
}

// New creates a new Tailer for the given file path.
func New(path string, cfg config.FollowConfig, logger *logging.Logger) *Tailer {
	return &Tailer{
		path:   path,
		cfg:    cfg,
		logger: logger,
	}
}

// Tail follows the file and sends each line to out until ctx is done or the
// file stops being followable.
func (t *Tailer) Tail(ctx context.Context, out chan<- string) error {
	tf, err := tail.TailFile(t.path, tail.Config{
		Follow:    true,
		ReOpen:    t.cfg.ReOpen,
		MustExist: true,
		Poll:      t.cfg.Poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer tf.Cleanup()

	t.logger.Infof("following %s", t.path)

	for {
		select {
		case <-ctx.Done():
			_ = tf.Stop()
			return ctx.Err()
		case line, ok := <-tf.Lines:
			if !ok {
				return tf.Err()
			}
			if line.Err != nil {
				t.logger.Errorf("tail %s: %v", t.path, line.Err)
				continue
			}
			select {
			case out <- line.Text:
			case <-ctx.Done():
				_ = tf.Stop()
				return ctx.Err()
			}
		}
	}
}
