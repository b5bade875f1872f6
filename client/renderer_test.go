package client

import (
	"bytes"
	"chat-relay/domain"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTerminalRenderer_Prints_Each_Message_Once(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	now := time.UnixMilli(1_700_000_000_000)
	renderer := NewTerminalRenderer(&out, func() time.Time { return now })

	view := View{
		Local:  "SAMUEL",
		Online: true,
		Presence: domain.PresenceSnapshot{
			"SAMUEL": domain.Connected(),
			"ANJOLA": domain.Disconnected(now.Add(-5 * time.Minute)),
		},
		Messages: []domain.Message{{ID: 1, Text: "hello", Sender: "ANJOLA"}},
	}

	// When the same view is rendered twice
	renderer.Render(view)
	renderer.Render(view)

	// Then the header and the message are printed once
	printed := out.String()
	req.Equal(1, strings.Count(printed, "hello"))
	req.Equal(1, strings.Count(printed, "5 minutes ago"))
}

func TestTerminalRenderer_Reprints_Status_Change(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, time.Now)
	pending := domain.Message{ID: 1, Text: "hi", Sender: "SAMUEL", Status: domain.StatusPending}

	renderer.Render(View{Local: "SAMUEL", Online: true, Messages: []domain.Message{pending}})
	failed := pending
	failed.Status = domain.StatusFailed
	renderer.Render(View{Local: "SAMUEL", Online: false, Messages: []domain.Message{failed}})

	printed := out.String()
	req.Contains(printed, "/retry")
	req.Contains(printed, "offline")
}

func TestTerminalRenderer_Shows_Typing_Of_Others_Only(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, time.Now)

	renderer.Render(View{Local: "SAMUEL", Online: true, Typing: lo.ToPtr(domain.Identity("SAMUEL"))})
	req.NotContains(out.String(), "is typing")

	renderer.Render(View{Local: "SAMUEL", Online: true, Typing: lo.ToPtr(domain.Identity("ANJOLA"))})
	req.Contains(out.String(), "ANJOLA is typing")
}

func TestWritePresenceTable(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	now := time.Now()

	WritePresenceTable(&out, domain.PresenceSnapshot{
		"SAMUEL": domain.Connected(),
		"ANJOLA": {},
	}, now)

	printed := out.String()
	req.Contains(printed, "SAMUEL")
	req.Contains(printed, "online")
	req.Contains(printed, "Never")
	// Rows are sorted by identity
	req.Less(strings.Index(printed, "ANJOLA"), strings.Index(printed, "SAMUEL"))
}
