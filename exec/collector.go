package exec

import (
	"bytes"
	"sync"
)

// OutputCollector is an io.Writer that keeps a rolling tail of command
// output. Only the last maxBuf bytes are retained in memory; total byte and
// newline counts stay accurate even after earlier data is trimmed, so
// truncation notices can report the real line count.
//
// It is safe for concurrent use: stdout and stderr copies run in separate
// goroutines.
type OutputCollector struct {
	mu            sync.Mutex
	buf           []byte
	total         int64
	totalNewlines int
	maxBuf        int
}

// NewOutputCollector creates a collector retaining the last maxBuf bytes.
func NewOutputCollector(maxBuf int) *OutputCollector {
	return &OutputCollector{maxBuf: maxBuf}
}

// Write implements io.Writer. It never fails.
func (c *OutputCollector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += int64(len(p))
	c.totalNewlines += bytes.Count(p, []byte{'\n'})
	c.buf = append(c.buf, p...)

	// Trim rolling buffer (copy to release the old backing array).
	if len(c.buf) > c.maxBuf {
		trimmed := make([]byte, c.maxBuf)
		copy(trimmed, c.buf[len(c.buf)-c.maxBuf:])
		c.buf = trimmed
	}

	return len(p), nil
}

// Bytes returns a copy of the current rolling buffer content.
func (c *OutputCollector) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buf...)
}

// TotalBytes returns the total number of bytes written, including trimmed data.
func (c *OutputCollector) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// TotalNewlines returns the total number of newlines seen, including trimmed data.
func (c *OutputCollector) TotalNewlines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalNewlines
}
