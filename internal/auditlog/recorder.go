package auditlog

import "github.com/eleven-am/live-console/internal/live"

type Sink interface {
	Publish(sessionID string, e live.LogEntry)
}

func Attach(sub live.Subscriber, sessionID string, store *Store, sink Sink) live.Subscription {
	return live.On(sub, func(ev live.Log) {
		if store != nil {
			store.Append(ev.Entry)
		}
		if sink != nil {
			sink.Publish(sessionID, ev.Entry)
		}
	})
}
