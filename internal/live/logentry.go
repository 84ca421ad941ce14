package live

import "time"

// LogEntry is one line of the session's audit log. Message holds either a
// string or a structured payload.
type LogEntry struct {
	Date    time.Time `json:"date"`
	Type    string    `json:"type"`
	Message any       `json:"message"`
	Count   int       `json:"count,omitempty"`
	Data    any       `json:"data,omitempty"`
}

const (
	LogClientOpen          = "client.open"
	LogClientClose         = "client.close"
	LogClientError         = "client.error"
	LogClientSend          = "client.send"
	LogClientRealtimeInput = "client.realtimeInput"
	LogClientToolResponse  = "client.toolResponse"

	LogServerSetupComplete        = "server.setupComplete"
	LogServerToolCall             = "server.toolCall"
	LogServerToolCallCancellation = "server.toolCallCancellation"
	LogServerInterrupted          = "server.interrupted"
	LogServerInputTranscription   = "server.inputTranscription"
	LogServerOutputTranscription  = "server.outputTranscription"
	LogServerAudio                = "server.audio"
	LogServerContent              = "server.content"
	LogServerTurnComplete         = "server.turncomplete"
	LogServerGoAway               = "server.goAway"
	LogServerError                = "server.error"
	LogServerClose                = "server.close"
)
