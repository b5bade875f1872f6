package domain

// Command is an intent submitted by a session to the relay event loop.
type Command interface {
	SessionID() SessionID
}

type LoginCommand struct {
	Session  SessionID
	Identity Identity
}

func (c LoginCommand) SessionID() SessionID { return c.Session }

type DisconnectCommand struct {
	Session SessionID
}

func (c DisconnectCommand) SessionID() SessionID { return c.Session }

type SendMessageCommand struct {
	Session SessionID
	Message Message
}

func (c SendMessageCommand) SessionID() SessionID { return c.Session }

type TypingCommand struct {
	Session  SessionID
	Identity Identity
}

func (c TypingCommand) SessionID() SessionID { return c.Session }

type StopTypingCommand struct {
	Session SessionID
}

func (c StopTypingCommand) SessionID() SessionID { return c.Session }
