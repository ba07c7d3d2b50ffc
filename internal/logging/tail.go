package logging

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

const (
	// MaxLineLength is the maximum length of a retained line before truncation.
	MaxLineLength = 4096

	// DefaultTailLines is the number of solver output lines kept by default.
	DefaultTailLines = 100
)

// OutputTail keeps the most recent lines written by a child process so they
// can be shown when it fails. Lines are retained verbatim.
type OutputTail struct {
	logger *slog.Logger

	mu     sync.Mutex
	buffer []string
	bufIdx int
	count  int64
}

// NewOutputTail creates a tail keeping the last size lines. Each completed
// line is also logged at debug level when logger is non-nil.
func NewOutputTail(size int, logger *slog.Logger) *OutputTail {
	if size <= 0 {
		size = DefaultTailLines
	}
	return &OutputTail{
		logger: logger,
		buffer: make([]string, size),
	}
}

// Stream returns a writer for one output stream ("stdout", "stderr").
// Partial lines are held per stream until their newline arrives.
func (t *OutputTail) Stream(name string) io.WriteCloser {
	return &tailStream{tail: t, name: name}
}

// Lines returns up to n of the most recent lines, oldest first.
func (t *OutputTail) Lines(n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.buffer)
	if n > size {
		n = size
	}
	if int64(n) > t.count {
		n = int(t.count)
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.bufIdx - n + i + size) % size
		lines = append(lines, t.buffer[idx])
	}
	return lines
}

// Count returns the total number of lines seen.
func (t *OutputTail) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *OutputTail) addLine(stream, line string) {
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength] + "...(truncated)"
	}

	t.mu.Lock()
	t.buffer[t.bufIdx] = line
	t.bufIdx = (t.bufIdx + 1) % len(t.buffer)
	t.count++
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Debug("solver_output", "stream", stream, "line", line)
	}
}

// tailStream splits writes into lines for its OutputTail.
type tailStream struct {
	tail    *OutputTail
	name    string
	pending []byte
}

func (s *tailStream) Write(p []byte) (int, error) {
	data := append(s.pending, p...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		s.tail.addLine(s.name, string(bytes.TrimRight(data[:i], "\r")))
		data = data[i+1:]
	}
	// Bound memory for output without newlines
	if len(data) > MaxLineLength {
		s.tail.addLine(s.name, string(data))
		data = nil
	}
	s.pending = append(s.pending[:0], data...)
	return len(p), nil
}

// Close flushes a trailing line without newline.
func (s *tailStream) Close() error {
	if len(s.pending) > 0 {
		s.tail.addLine(s.name, string(s.pending))
		s.pending = s.pending[:0]
	}
	return nil
}
