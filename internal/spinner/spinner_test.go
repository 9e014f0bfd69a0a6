package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer serializes writes so the spinner goroutine and the test do not
// race on the buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_WritesMessageAndClears(t *testing.T) {
	var buf syncBuffer
	stop := Start(&buf, "decoding shots...")
	time.Sleep(200 * time.Millisecond)
	stop()

	out := buf.String()
	assert.Contains(t, out, "decoding shots...")
	assert.True(t, strings.HasSuffix(out, "\r"), "spinner should clear the line on stop")
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf syncBuffer
	stop := Start(&buf, "working")
	stop()
	stop()
}
