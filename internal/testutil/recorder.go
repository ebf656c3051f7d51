package testutil

import (
	"sync"

	"github.com/roach88/marbles/internal/ir"
)

// Recorder is an rx.Observer that records every notification it receives.
//
// Thread-safety: safe under concurrent Next/Error/Complete calls, which
// happens when real time providers drive a stream.
type Recorder struct {
	mu            sync.Mutex
	notifications []ir.Notification
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Next(v any) {
	r.record(ir.Next(v))
}

func (r *Recorder) Error(err error) {
	r.record(ir.Error(err))
}

func (r *Recorder) Complete() {
	r.record(ir.Complete())
}

func (r *Recorder) record(n ir.Notification) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()
}

// Notifications returns a snapshot copy of everything recorded so far.
func (r *Recorder) Notifications() []ir.Notification {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]ir.Notification, len(r.notifications))
	copy(cp, r.notifications)
	return cp
}

// Values returns the payloads of the recorded Next notifications in order.
func (r *Recorder) Values() []any {
	var out []any
	for _, n := range r.Notifications() {
		if n.Kind == ir.KindNext {
			out = append(out, n.Value)
		}
	}
	return out
}

// Terminal returns the terminal notification, if one was recorded.
func (r *Recorder) Terminal() (ir.Notification, bool) {
	ns := r.Notifications()
	if len(ns) == 0 || !ns[len(ns)-1].IsTerminal() {
		return ir.Notification{}, false
	}
	return ns[len(ns)-1], true
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.notifications = nil
	r.mu.Unlock()
}
