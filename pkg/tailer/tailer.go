// Package tailer follows a growing log file across rotation and truncation,
// yielding complete lines.
package tailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
)

const (
	// DefaultPollInterval is used by Run when interval is not positive.
	DefaultPollInterval = 250 * time.Millisecond
	// DefaultMaxLineBytes bounds a held partial line.
	DefaultMaxLineBytes = 64 * 1024

	readChunk = 32 * 1024
)

// Options configures a Source.
type Options struct {
	StartAtEnd   bool
	MaxLineBytes int
	Logger       *logging.ColoredLogger
}

// Identity is an opaque file identity (device and inode on Unix).
type Identity struct {
	info os.FileInfo
}

// Same reports whether both identities refer to the same file.
func (i Identity) Same(o Identity) bool {
	if i.info == nil || o.info == nil {
		return false
	}
	return os.SameFile(i.info, o.info)
}

// ResolvePath picks the file to tail. An explicit path must be readable;
// otherwise the first readable fallback wins.
func ResolvePath(explicit string, fallbacks []string) (string, error) {
	if explicit != "" {
		if err := checkReadable(explicit); err != nil {
			return "", errors.NewSourceUnavailableError([]string{explicit}, err)
		}
		return explicit, nil
	}

	tried := make([]string, 0, len(fallbacks))
	for _, p := range fallbacks {
		if p == "" {
			continue
		}
		tried = append(tried, p)
		if checkReadable(p) == nil {
			return p, nil
		}
	}
	return "", errors.NewSourceUnavailableError(tried, nil)
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// Source owns the handle of the tailed file. Poll and Run must be called from
// a single goroutine; the counters may be read from anywhere.
type Source struct {
	path   string
	opts   Options
	logger *logging.ColoredLogger

	file    *os.File
	id      Identity
	offset  atomic.Int64
	partial []byte
	// skipCut discards bytes up to the next newline. Set when StartAtEnd
	// lands inside a line.
	skipCut bool

	rotations atomic.Uint64
}

// Open opens path and positions the read offset at the start, or at the end
// when StartAtEnd is set.
func Open(path string, opts Options) (*Source, error) {
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	f, info, err := openWithInfo(path)
	if err != nil {
		return nil, errors.NewSourceUnavailableError([]string{path}, err)
	}

	s := &Source{
		path:   path,
		opts:   opts,
		logger: logger,
		file:   f,
		id:     Identity{info: info},
	}
	if opts.StartAtEnd {
		if _, err := f.Seek(info.Size(), io.SeekStart); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "seek to end")
		}
		s.offset.Store(info.Size())
		cut, err := endsMidLine(f, info.Size())
		if err != nil {
			f.Close()
			return nil, errors.NewReadError(path, err)
		}
		s.skipCut = cut
	}

	logger.ComponentInfo(logging.ComponentSource, "tailing log file",
		zap.String("path", path),
		zap.Int64("offset", s.offset.Load()))
	return s, nil
}

func openWithInfo(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// endsMidLine reports whether a non-empty file lacks a trailing newline.
func endsMidLine(f *os.File, size int64) (bool, error) {
	if size == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// Path returns the tailed path.
func (s *Source) Path() string { return s.path }

// Offset returns the byte offset of the next read.
func (s *Source) Offset() int64 { return s.offset.Load() }

// Rotations returns how many rotations or truncations were handled.
func (s *Source) Rotations() uint64 { return s.rotations.Load() }

// Poll returns the complete lines appended since the previous call.
//
// When the path now names a different file, the rest of the old file is read
// first and the new file is then followed from its start. When the file
// shrank below the offset it is re-read from the start. In both cases a held
// partial line is dropped. A path that is temporarily missing keeps the old
// handle.
func (s *Source) Poll() ([]string, error) {
	if s.file == nil {
		return nil, errors.NewInternalError("source is closed", nil).WithOperation("poll")
	}

	var lines []string

	if info, err := os.Stat(s.path); err == nil && !s.id.Same(Identity{info: info}) {
		tail, err := s.read()
		if err != nil {
			s.logger.ComponentWarn(logging.ComponentSource, "read before rotation failed", zap.Error(err))
		}
		lines = append(lines, tail...)
		if err := s.reopen(); err != nil {
			return lines, err
		}
	} else if cur, err := s.file.Stat(); err == nil && cur.Size() < s.offset.Load() {
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return lines, errors.Wrap(err, "seek after truncation")
		}
		s.resetPosition(errors.NewRotationError(s.path, true))
	}

	more, err := s.read()
	lines = append(lines, more...)
	return lines, err
}

func (s *Source) reopen() error {
	f, info, err := openWithInfo(s.path)
	if err != nil {
		return errors.NewReadError(s.path, err)
	}
	s.file.Close()
	s.file = f
	s.id = Identity{info: info}
	s.resetPosition(errors.NewRotationError(s.path, false))
	return nil
}

func (s *Source) resetPosition(reason *errors.RotationError) {
	s.offset.Store(0)
	s.partial = nil
	s.skipCut = false
	s.rotations.Add(1)
	s.logger.ComponentWarn(logging.ComponentSource, "rotation detected",
		zap.String("code", reason.Code()),
		zap.String("path", s.path),
		zap.Bool("truncated", reason.Truncated))
}

// read consumes everything available from the current handle.
func (s *Source) read() ([]string, error) {
	var lines []string
	buf := make([]byte, readChunk)
	for {
		n, err := s.file.Read(buf)
		if n > 0 {
			s.offset.Add(int64(n))
			lines = s.split(lines, buf[:n])
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, errors.NewReadError(s.path, err)
		}
	}
}

func (s *Source) split(lines []string, chunk []byte) []string {
	if s.skipCut {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			return lines
		}
		chunk = chunk[i+1:]
		s.skipCut = false
	}
	data := append(s.partial, chunk...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(data[:i], []byte{'\r'})))
		data = data[i+1:]
	}
	if len(data) > s.opts.MaxLineBytes {
		lines = append(lines, string(data))
		data = nil
	}
	s.partial = append([]byte(nil), data...)
	return lines
}

// Run polls every interval and hands each line to emit until ctx is done.
// The file is closed before Run returns.
func (s *Source) Run(ctx context.Context, interval time.Duration, emit func(line string)) error {
	defer s.Close()
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, err := s.Poll()
		for _, line := range lines {
			emit(line)
		}
		if err != nil {
			s.logPollError(err)
		}

		select {
		case <-ctx.Done():
			s.logger.ComponentInfo(logging.ComponentSource, "stopped tailing", zap.String("path", s.path))
			return nil
		case <-ticker.C:
		}
	}
}

// logPollError reports a failed poll. Read and rotation failures are
// expected while logs rotate; anything else is logged as an error. Polling
// continues either way.
func (s *Source) logPollError(err error) {
	code := errors.GetErrorCode(err)
	fields := []zap.Field{
		zap.String("path", s.path),
		zap.String("code", code),
		zap.Error(err),
	}
	if errors.IsRecoverable(code) {
		s.logger.ComponentWarn(logging.ComponentSource, "poll failed", fields...)
		return
	}
	s.logger.ComponentError(logging.ComponentSource, "poll failed",
		append(fields, zap.String("category", string(errors.GetCategory(code))))...)
}

// Close releases the file handle. It is safe to call more than once.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
