package e2e

import (
	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseRelaySuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func online(id domain.Identity) func(view client.View) bool {
	return func(view client.View) bool { return view.Presence[id].Online }
}

func hasText(text string) func(view client.View) bool {
	return func(view client.View) bool {
		return lo.ContainsBy(view.Messages, func(m domain.Message) bool { return m.Text == text })
	}
}

func (s *testChatSuite) TestTwoParticipantsConversation() {
	samuelDir, anjolaDir := s.T().TempDir(), s.T().TempDir()
	var samuel, anjola, samuelSibling *Instance

	s.Step("Step 1: SAMUEL logs in and sees themselves online", func() {
		samuel = s.StartInstance("SAMUEL", samuelDir, "laptop")
		view := s.WaitView(samuel, "SAMUEL online", online("SAMUEL"))
		s.Require().False(view.Presence["ANJOLA"].Online)
		s.Require().Nil(view.Presence["ANJOLA"].LastSeen)
	})

	s.Step("Step 2: a non-member is turned away", func() {
		_, err := client.Login(context.Background(), http.DefaultClient, s.server.URL, "MALLORY")
		s.Require().ErrorIs(err, errors.ErrLoginRejected)
	})

	s.Step("Step 3: ANJOLA joins, both see each other online", func() {
		anjola = s.StartInstance("ANJOLA", anjolaDir, "phone")
		s.WaitView(samuel, "SAMUEL sees ANJOLA", online("ANJOLA"))
		s.WaitView(anjola, "ANJOLA sees SAMUEL", online("SAMUEL"))
	})

	s.Step("Step 4: SAMUEL writes while ANJOLA looks away", func() {
		anjola.Attention.SetFocused(false)
		s.Require().NoError(samuel.Client.Send(context.Background(), "hello"))

		view := s.WaitView(samuel, "echo confirms the message", func(view client.View) bool {
			return hasText("hello")(view) && view.Messages[0].Status == domain.StatusSent
		})
		s.Require().Len(view.Messages, 1)
		s.Require().True(view.Messages[0].Read)

		s.WaitView(anjola, "ANJOLA receives hello", hasText("hello"))
		s.Require().Eventually(func() bool { return len(anjola.Notifier.Notified()) == 1 }, s.Config.Timeout, 10*time.Millisecond)
		s.Require().Empty(samuel.Notifier.Notified())
	})

	s.Step("Step 5: a second SAMUEL instance restores the shared history", func() {
		samuelSibling = s.StartInstance("SAMUEL", samuelDir, "desktop")
		view := s.WaitView(samuelSibling, "history restored", hasText("hello"))
		s.Require().Len(view.Messages, 1)
	})

	s.Step("Step 6: ANJOLA answers, every SAMUEL instance holds it once", func() {
		s.Require().NoError(anjola.Client.Send(context.Background(), "hi back"))
		for _, instance := range []*Instance{samuel, samuelSibling} {
			view := s.WaitView(instance, "answer received", hasText("hi back"))
			s.Require().Len(lo.UniqBy(view.Messages, func(m domain.Message) domain.MessageID { return m.ID }), len(view.Messages))
		}
	})

	s.Step("Step 7: ANJOLA leaves and SAMUEL sees a last seen time", func() {
		anjola.Disconnect()
		view := s.WaitView(samuel, "ANJOLA offline", func(view client.View) bool {
			return !view.Presence["ANJOLA"].Online && view.Presence["ANJOLA"].LastSeen != nil
		})
		s.Require().True(view.Presence["SAMUEL"].Online)
		s.WaitView(anjola, "ANJOLA works offline", func(view client.View) bool { return !view.Online })
	})
}
