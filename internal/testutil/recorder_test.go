package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/marbles/internal/ir"
)

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder()
	r.Next("a")
	r.Next("b")
	r.Complete()

	assert.Equal(t, []ir.Notification{ir.Next("a"), ir.Next("b"), ir.Complete()}, r.Notifications())
	assert.Equal(t, []any{"a", "b"}, r.Values())

	term, ok := r.Terminal()
	assert.True(t, ok)
	assert.Equal(t, ir.Complete(), term)
}

func TestRecorder_TerminalMissing(t *testing.T) {
	r := NewRecorder()
	r.Next(1)

	_, ok := r.Terminal()
	assert.False(t, ok)
}

func TestRecorder_Error(t *testing.T) {
	r := NewRecorder()
	err := errors.New("boom")
	r.Error(err)

	term, ok := r.Terminal()
	assert.True(t, ok)
	assert.Equal(t, ir.Error(err), term)
}

func TestRecorder_SnapshotIsCopy(t *testing.T) {
	r := NewRecorder()
	r.Next(1)
	snap := r.Notifications()
	r.Next(2)

	assert.Len(t, snap, 1)
	assert.Len(t, r.Notifications(), 2)
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.Next(1)
	r.Reset()
	assert.Empty(t, r.Notifications())
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.Next(1)
	r.Reset()
	assert.Nil(t, r.Notifications())
}

func TestRecorder_ThreadSafe(t *testing.T) {
	r := NewRecorder()
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(v int) {
			defer wg.Done()
			r.Next(v)
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Values(), goroutines)
}
