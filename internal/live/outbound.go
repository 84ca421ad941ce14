package live

import (
	"fmt"
	"strings"
)

type TurnLog struct {
	Turns        []Part `json:"turns"`
	TurnComplete bool   `json:"turnComplete"`
}

const (
	RealtimeAudio        = "audio"
	RealtimeVideo        = "video"
	RealtimeAudioVideo   = "audio + video"
	RealtimeUnclassified = "unknown"
)

func (c *Client) Send(parts []Part) error {
	return c.SendTurn(parts, true)
}

func (c *Client) SendTurn(parts []Part, turnComplete bool) error {
	sess, err := c.activeSession("send")
	if err != nil {
		return err
	}
	if err := sess.SendTurn(parts, turnComplete); err != nil {
		return c.sendFailed("send", err)
	}
	c.logEntry(LogClientSend, TurnLog{Turns: parts, TurnComplete: turnComplete})
	return nil
}

func (c *Client) SendRealtimeInput(chunks []RealtimeChunk) error {
	sess, err := c.activeSession("send realtime input")
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := sess.SendRealtime(chunk); err != nil {
			return c.sendFailed("send realtime input", err)
		}
	}
	c.logEntry(LogClientRealtimeInput, ClassifyChunks(chunks))
	return nil
}

// SendToolResponse forwards resp when it carries at least one function
// response. The attempt is logged either way.
func (c *Client) SendToolResponse(resp ToolResponse) error {
	sess, err := c.activeSession("send tool response")
	if err != nil {
		return err
	}
	if len(resp.FunctionResponses) > 0 {
		if err := sess.SendToolResponse(resp); err != nil {
			return c.sendFailed("send tool response", err)
		}
	}
	c.logEntry(LogClientToolResponse, resp)
	return nil
}

func ClassifyChunks(chunks []RealtimeChunk) string {
	var hasAudio, hasVideo bool
	for _, ch := range chunks {
		if !hasAudio && strings.HasPrefix(ch.MIMEType, "audio/") {
			hasAudio = true
		}
		if !hasVideo && strings.HasPrefix(ch.MIMEType, "image/") {
			hasVideo = true
		}
		if hasAudio && hasVideo {
			break
		}
	}

	switch {
	case hasAudio && hasVideo:
		return RealtimeAudioVideo
	case hasAudio:
		return RealtimeAudio
	case hasVideo:
		return RealtimeVideo
	default:
		return RealtimeUnclassified
	}
}

func (c *Client) activeSession(op string) (Session, error) {
	c.mu.Lock()
	sess, status := c.session, c.status
	c.mu.Unlock()

	if status == StatusConnected && sess != nil {
		return sess, nil
	}

	err := fmt.Errorf("%s: %w", op, ErrNotConnected)
	c.logEntry(LogClientError, err.Error())
	c.bus.Publish(Error{Message: err.Error()})
	return nil, err
}

func (c *Client) sendFailed(op string, cause error) error {
	err := fmt.Errorf("%s: %w", op, cause)
	c.log.Warn("live send failed", "op", op, "error", cause)
	c.logEntry(LogClientError, err.Error())
	c.bus.Publish(Error{Message: err.Error()})
	return err
}
