package gateway

import (
	"github.com/eleven-am/live-console/internal/live"
)

type CommandType string

const (
	CommandConnect       CommandType = "connect"
	CommandDisconnect    CommandType = "disconnect"
	CommandSend          CommandType = "send"
	CommandRealtimeInput CommandType = "realtimeInput"
	CommandToolResponse  CommandType = "toolResponse"
)

// Command is a message sent by the browser. Only the fields relevant to Type
// are read.
type Command struct {
	Type CommandType `json:"type"`

	Preset string              `json:"preset,omitempty"`
	Config *live.SessionConfig `json:"config,omitempty"`

	Parts        []live.Part `json:"parts,omitempty"`
	TurnComplete *bool       `json:"turnComplete,omitempty"`

	Chunks []live.RealtimeChunk `json:"chunks,omitempty"`

	FunctionResponses []live.FunctionResponse `json:"functionResponses,omitempty"`
}

const (
	FrameSession      = "session"
	FrameCommandError = "commandError"
)

type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type CommandError struct {
	Command CommandType `json:"command,omitempty"`
	Message string      `json:"message"`
}

// AudioPayload is the audio event as sent to the browser: raw PCM at the
// backend output rate, base64 encoded.
type AudioPayload struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func eventFrame(ev live.Event) Frame {
	if a, ok := ev.(live.Audio); ok {
		return Frame{
			Type: string(ev.Name()),
			Payload: AudioPayload{
				MIMEType: audioMIMEType,
				Data:     live.EncodeAudio(a.Data),
			},
		}
	}
	return Frame{Type: string(ev.Name()), Payload: ev}
}
