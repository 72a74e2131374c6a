//go:build unix

package crash

import (
	"bytes"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
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

func TestReporter_ExternalSignal(t *testing.T) {
	var out syncBuffer
	exited := make(chan int, 1)
	r := New(WithOutput(&out), WithExit(func(c int) { exited <- c }))
	require.NoError(t, r.Install())

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGBUS))

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not handle SIGBUS")
	}
	assert.Contains(t, out.String(), "Abort by bus error")
}
