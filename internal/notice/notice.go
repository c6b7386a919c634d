// Package notice delivers short user-visible messages (success or error toasts).
package notice

import (
	"fmt"
	"io"
	"sync"
)

// Level distinguishes success from error notices.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
)

// Notice is one user-visible message.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Writer prints notices as single lines. Success notices are suppressed when Quiet is set.
type Writer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// Notify implements Notifier.
func (w *Writer) Notify(n Notice) {
	dst := w.Out
	if n.Level == Error {
		dst = w.Err
	} else if w.Quiet {
		return
	}
	if dst == nil {
		return
	}
	if n.Text == "" {
		fmt.Fprintln(dst, n.Title)
		return
	}
	fmt.Fprintf(dst, "%s: %s\n", n.Title, n.Text)
}

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Errors returns only the error notices.
func (r *Recorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Level == Error {
			out = append(out, n)
		}
	}
	return out
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
