package live

import (
	"context"
	"strings"
)

type CloseEvent struct {
	Code   int
	Reason string
}

type Callbacks struct {
	OnOpen    func()
	OnMessage func(InboundMessage)
	OnError   func(error)
	OnClose   func(CloseEvent)
}

// Transport opens duplex sessions with the live backend. Open may block until
// the channel is established. OnMessage, OnError and OnClose may fire from
// another goroutine while Open is still returning, but never synchronously
// from within Open.
type Transport interface {
	Open(ctx context.Context, model string, cfg *SessionConfig, cb Callbacks) (Session, error)
}

type Session interface {
	SendTurn(turns []Part, turnComplete bool) error
	SendRealtime(chunk RealtimeChunk) error
	SendToolResponse(resp ToolResponse) error
	Close() error
}

const closeReasonMarker = "ERROR]"

// CloseReason extracts the human readable part of a backend close reason.
func CloseReason(reason string) string {
	idx := strings.Index(reason, closeReasonMarker)
	if idx < 0 {
		return reason
	}
	start := idx + len(closeReasonMarker) + 1
	if start > len(reason) {
		return ""
	}
	return reason[start:]
}
