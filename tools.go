//go:build tools

// Package tools pins the code generators invoked by go generate,
// so mockgen resolves from go.mod on a fresh checkout.
package chat_relay

import (
	_ "go.uber.org/mock/mockgen"
)
