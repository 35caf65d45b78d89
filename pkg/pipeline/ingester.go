package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/tailer"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// Ingester runs the tailer and parser in the background and feeds the queue.
type Ingester struct {
	source   *tailer.Source
	parser   *ufwlog.Parser
	queue    *Queue
	interval time.Duration
	logger   *logging.ColoredLogger
}

// NewIngester wires source and parser to queue.
func NewIngester(source *tailer.Source, parser *ufwlog.Parser, queue *Queue, interval time.Duration, logger *logging.ColoredLogger) *Ingester {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingester{
		source:   source,
		parser:   parser,
		queue:    queue,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled. The file handle is released before Run
// returns.
func (i *Ingester) Run(ctx context.Context) error {
	i.logger.ComponentInfo(logging.ComponentPipeline, "ingester started",
		zap.String("path", i.source.Path()),
		zap.Duration("interval", i.interval))

	err := i.source.Run(ctx, i.interval, i.handle)

	i.logger.ComponentInfo(logging.ComponentPipeline, "ingester stopped",
		zap.Uint64("parsed", i.parser.Parsed()),
		zap.Uint64("skipped", i.parser.Skipped()),
		zap.Uint64("dropped", i.queue.Dropped()))
	return err
}

// handle parses one line. Blank lines are ignored without being counted.
func (i *Ingester) handle(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	e, err := i.parser.Parse(line)
	if err != nil {
		return
	}
	i.queue.Push(e)
}

// Parsed returns the number of lines turned into entries.
func (i *Ingester) Parsed() uint64 { return i.parser.Parsed() }

// Skipped returns the number of malformed lines.
func (i *Ingester) Skipped() uint64 { return i.parser.Skipped() }

// Rotations returns the number of rotations handled by the tailer.
func (i *Ingester) Rotations() uint64 { return i.source.Rotations() }
