package client

import (
	"chat-relay/domain"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var _ Renderer = (*TerminalRenderer)(nil)

// TerminalRenderer prints the header and the messages not shown yet.
// The whole timeline is reprinted after a sibling replaced it.
type TerminalRenderer struct {
	out   io.Writer
	now   func() time.Time
	shown map[domain.MessageID]domain.DeliveryStatus
	count int
	last  string
}

func NewTerminalRenderer(out io.Writer, now func() time.Time) *TerminalRenderer {
	return &TerminalRenderer{out: out, now: now, shown: make(map[domain.MessageID]domain.DeliveryStatus)}
}

func (r *TerminalRenderer) Render(view View) {
	if header := r.header(view); header != r.last {
		r.last = header
		_, _ = fmt.Fprintln(r.out, color.New(color.BgBlack, color.FgGreen).Render(header))
	}

	if len(view.Messages) < r.count {
		r.shown = make(map[domain.MessageID]domain.DeliveryStatus)
	}
	r.count = len(view.Messages)
	for _, m := range view.Messages {
		status, seen := r.shown[m.ID]
		if seen && status == m.Status {
			continue
		}
		r.shown[m.ID] = m.Status
		_, _ = fmt.Fprintln(r.out, r.line(view.Local, m))
	}
}

func (r *TerminalRenderer) header(view View) string {
	header := fmt.Sprintf("[%s]", view.Local)
	for _, id := range sortedIdentities(view.Presence) {
		if id == view.Local {
			continue
		}
		header += fmt.Sprintf(" %s: %s", id, domain.FormatLastSeen(view.Presence[id], r.now()))
	}
	if view.Typing != nil && *view.Typing != view.Local {
		header += fmt.Sprintf(" (%s is typing...)", *view.Typing)
	}
	if !view.Online {
		header += " offline"
	}
	return header
}

func (r *TerminalRenderer) line(local domain.Identity, m domain.Message) string {
	switch {
	case m.Status == domain.StatusFailed:
		return color.Red.Sprintf("%s: %s (failed, /retry)", m.Sender, m.Text)
	case m.Status == domain.StatusPending:
		return color.Gray.Sprintf("%s: %s ...", m.Sender, m.Text)
	case m.Sender == local:
		return color.Cyan.Sprintf("%s: %s", m.Sender, m.Text)
	default:
		return fmt.Sprintf("%s: %s", color.Bold.Sprint(m.Sender), m.Text)
	}
}

// WritePresenceTable prints one row per identity of the snapshot.
func WritePresenceTable(out io.Writer, snapshot domain.PresenceSnapshot, now time.Time) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Identity", "Status", "Last seen"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, id := range sortedIdentities(snapshot) {
		record := snapshot[id]
		status := "offline"
		if record.Online {
			status = "online"
		}
		table.Append([]string{id.String(), status, domain.FormatLastSeen(record, now)})
	}
	table.Render()
}

func sortedIdentities(snapshot domain.PresenceSnapshot) []domain.Identity {
	ids := make([]domain.Identity, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
