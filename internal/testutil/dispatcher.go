package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/j-millet/scriptrunner/internal/dispatch"
)

// RecordingDispatcher records commands instead of running them.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingDispatcher struct {
	mu       sync.Mutex
	commands []dispatch.Command
	failures map[string]error
}

// NewRecordingDispatcher creates a dispatcher where every command succeeds.
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{failures: make(map[string]error)}
}

// FailOn makes commands with exactly this text fail with err.
func (d *RecordingDispatcher) FailOn(text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[text] = err
}

// Dispatch implements dispatch.Dispatcher.
func (d *RecordingDispatcher) Dispatch(ctx context.Context, cmd dispatch.Command) (dispatch.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commands = append(d.commands, cmd)
	if err, ok := d.failures[cmd.Text]; ok {
		return dispatch.Result{ExitCode: 1, Duration: time.Millisecond},
			&dispatch.Error{Command: cmd.Text, ExitCode: 1, Err: err}
	}
	return dispatch.Result{Duration: time.Millisecond}, nil
}

// Commands returns every recorded command in dispatch order.
func (d *RecordingDispatcher) Commands() []dispatch.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatch.Command, len(d.commands))
	copy(out, d.commands)
	return out
}

// Texts returns the text of every recorded command.
func (d *RecordingDispatcher) Texts() []string {
	cmds := d.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Text
	}
	return out
}
