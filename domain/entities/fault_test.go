package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultFromPanic(t *testing.T) {
	t.Run("nil dereference", func(t *testing.T) {
		var r any
		func() {
			defer func() { r = recover() }()
			var p *int
			_ = *p
		}()
		f, ok := FaultFromPanic(r)
		assert.True(t, ok)
		assert.Equal(t, FaultSegfault, f.Signal)
		assert.Contains(t, f.Message, "invalid memory address")
	})

	t.Run("index out of range is not a fault", func(t *testing.T) {
		var r any
		func() {
			defer func() { r = recover() }()
			s := []int{}
			i := 3
			_ = s[i]
		}()
		_, ok := FaultFromPanic(r)
		assert.False(t, ok)
	})

	t.Run("fault value", func(t *testing.T) {
		f, ok := FaultFromPanic(Fault{Signal: FaultBusError, Message: "trap"})
		assert.True(t, ok)
		assert.Equal(t, FaultBusError, f.Signal)
	})

	t.Run("plain panic", func(t *testing.T) {
		_, ok := FaultFromPanic("boom")
		assert.False(t, ok)
	})
}

func TestFault_String(t *testing.T) {
	f := Fault{Signal: FaultSegfault, Kernel: "qsort_kernel_d1JJ", Addr: 0xdead, HasAddr: true}
	assert.Equal(t, "Abort by segfault in qsort_kernel_d1JJ at address 0xdead", f.String())
	assert.Equal(t, "Abort by bus error", Fault{Signal: FaultBusError}.String())

	buf := make([]byte, 0, 128)
	out := f.Append(buf)
	assert.Equal(t, "Abort by segfault in qsort_kernel_d1JJ at address 0xdead", string(out))
	assert.Equal(t, 0.0, testing.AllocsPerRun(10, func() { _ = f.Append(buf[:0]) }))
}
