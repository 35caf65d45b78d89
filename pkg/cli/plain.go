package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
	"github.com/DeBrosOfficial/ufwtail/pkg/tailer"
)

// Printer writes rows that became visible since the last flush, one per line.
type Printer struct {
	consumer *pipeline.Consumer
	w        io.Writer
	describe bool
	lastSeq  uint64
}

// NewPrinter creates a printer over consumer.
func NewPrinter(consumer *pipeline.Consumer, w io.Writer, describe bool) *Printer {
	return &Printer{consumer: consumer, w: w, describe: describe}
}

// Flush drains the queue and prints the new rows. It returns how many rows
// were written.
func (p *Printer) Flush() (int, error) {
	p.consumer.Drain()
	st := p.consumer.State()
	if st == nil {
		return 0, nil
	}
	rows := st.View.Since(p.lastSeq)
	for _, r := range rows {
		if _, err := fmt.Fprintln(p.w, r.Line(p.describe)); err != nil {
			return 0, err
		}
	}
	if n := len(rows); n > 0 {
		p.lastSeq = rows[n-1].Entry.Seq
	}
	return len(rows), nil
}

// RunPlain flushes on every interval until ctx is cancelled, then flushes
// once more.
func RunPlain(ctx context.Context, consumer *pipeline.Consumer, interval time.Duration, w io.Writer, describe bool) error {
	if interval <= 0 {
		interval = tailer.DefaultPollInterval
	}
	p := NewPrinter(consumer, w, describe)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.Flush(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			_, err := p.Flush()
			return err
		case <-ticker.C:
		}
	}
}
