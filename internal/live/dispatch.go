package live

import "fmt"

func (c *Client) dispatch(msg InboundMessage) {
	switch m := msg.(type) {
	case *SetupComplete:
		c.logEntry(LogServerSetupComplete, "setupComplete")
		c.bus.Publish(SetupCompleteEvent{})
	case *ToolCall:
		if m == nil {
			return
		}
		c.logEntry(LogServerToolCall, *m)
		c.bus.Publish(ToolCallEvent{ToolCall: *m})
	case *ToolCallCancellation:
		if m == nil {
			return
		}
		c.logEntry(LogServerToolCallCancellation, *m)
		c.bus.Publish(ToolCallCancellationEvent{Cancellation: *m})
	case *ServerContent:
		if m == nil {
			return
		}
		c.dispatchServerContent(m)
	case *GoAway:
		if m == nil {
			return
		}
		c.logEntry(LogServerGoAway, fmt.Sprintf("time left %s", m.TimeLeft))
	default:
		c.log.Warn("unmatched inbound message", "type", fmt.Sprintf("%T", msg))
	}
}

func (c *Client) dispatchServerContent(sc *ServerContent) {
	if sc.Interrupted {
		c.logEntry(LogServerInterrupted, "interrupted")
		c.bus.Publish(Interrupted{})
		return
	}

	if t := sc.InputTranscription; t != nil {
		c.bus.Publish(InputTranscription{Text: t.Text, IsFinal: t.IsFinal})
		c.logEntry(LogServerInputTranscription, t.Text)
	}

	if t := sc.OutputTranscription; t != nil {
		c.bus.Publish(OutputTranscription{Text: t.Text, IsFinal: t.IsFinal})
		c.logEntry(LogServerOutputTranscription, t.Text)
	}

	if sc.ModelTurn != nil {
		c.dispatchModelTurn(sc.ModelTurn.Parts)
	}

	if sc.TurnComplete {
		c.logEntry(LogServerTurnComplete, "turnComplete")
		c.bus.Publish(TurnComplete{})
	}
}

func (c *Client) dispatchModelTurn(parts []Part) {
	audio, other := SplitParts(parts)

	for _, p := range audio {
		data, err := DecodeAudio(p)
		if err != nil {
			c.logEntry(LogServerError, fmt.Sprintf("decode audio: %v", err))
			continue
		}
		c.bus.Publish(Audio{Data: data})
		c.logEntry(LogServerAudio, fmt.Sprintf("buffer (%d)", len(data)))
	}

	if len(other) == 0 {
		return
	}

	ev := ContentEvent{ModelTurn: Content{Parts: other}}
	c.bus.Publish(ev)
	c.logEntry(LogServerContent, ev)
}
