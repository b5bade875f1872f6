package client

import (
	"chat-relay/domain"
	"chat-relay/projection"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gookit/color"
)

var (
	_ projection.Notifier  = (*TerminalNotifier)(nil)
	_ projection.Attention = (*AttentionState)(nil)
)

// TerminalNotifier rings the bell and prints a highlighted line.
type TerminalNotifier struct {
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Notify(m domain.Message) {
	_, _ = fmt.Fprint(n.out, "\a")
	_, _ = fmt.Fprintln(n.out, color.Yellow.Sprintf("🔔 New message from %s: %s", m.Sender, m.Text))
}

// AttentionState is toggled by the user (/away, /back) and read by the
// reconciler.
type AttentionState struct {
	focused atomic.Bool
	allowed atomic.Bool
}

func NewAttentionState(notificationsAllowed bool) *AttentionState {
	a := &AttentionState{}
	a.focused.Store(true)
	a.allowed.Store(notificationsAllowed)
	return a
}

func (a *AttentionState) Focused() bool              { return a.focused.Load() }
func (a *AttentionState) NotificationsAllowed() bool { return a.allowed.Load() }
func (a *AttentionState) SetFocused(focused bool)    { a.focused.Store(focused) }
