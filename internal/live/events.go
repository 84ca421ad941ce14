package live

type EventName string

const (
	EventOpen                 EventName = "open"
	EventClose                EventName = "close"
	EventError                EventName = "error"
	EventSetupComplete        EventName = "setupcomplete"
	EventToolCall             EventName = "toolcall"
	EventToolCallCancellation EventName = "toolcallcancellation"
	EventInterrupted          EventName = "interrupted"
	EventInputTranscription   EventName = "inputTranscription"
	EventOutputTranscription  EventName = "outputTranscription"
	EventAudio                EventName = "audio"
	EventContent              EventName = "content"
	EventTurnComplete         EventName = "turncomplete"
	EventLog                  EventName = "log"
)

var EventNames = []EventName{
	EventOpen,
	EventClose,
	EventError,
	EventSetupComplete,
	EventToolCall,
	EventToolCallCancellation,
	EventInterrupted,
	EventInputTranscription,
	EventOutputTranscription,
	EventAudio,
	EventContent,
	EventTurnComplete,
	EventLog,
}

type Event interface {
	Name() EventName
}

type Open struct{}

type Close struct {
	Reason string `json:"reason"`
}

type Error struct {
	Message string `json:"message"`
}

type SetupCompleteEvent struct{}

type ToolCallEvent struct {
	ToolCall ToolCall `json:"toolCall"`
}

type ToolCallCancellationEvent struct {
	Cancellation ToolCallCancellation `json:"toolCallCancellation"`
}

type Interrupted struct{}

type InputTranscription struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type OutputTranscription struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type Audio struct {
	Data []byte `json:"data"`
}

type ContentEvent struct {
	ModelTurn Content `json:"modelTurn"`
}

type TurnComplete struct{}

type Log struct {
	Entry LogEntry `json:"entry"`
}

func (Open) Name() EventName                      { return EventOpen }
func (Close) Name() EventName                     { return EventClose }
func (Error) Name() EventName                     { return EventError }
func (SetupCompleteEvent) Name() EventName        { return EventSetupComplete }
func (ToolCallEvent) Name() EventName             { return EventToolCall }
func (ToolCallCancellationEvent) Name() EventName { return EventToolCallCancellation }
func (Interrupted) Name() EventName               { return EventInterrupted }
func (InputTranscription) Name() EventName        { return EventInputTranscription }
func (OutputTranscription) Name() EventName       { return EventOutputTranscription }
func (Audio) Name() EventName                     { return EventAudio }
func (ContentEvent) Name() EventName              { return EventContent }
func (TurnComplete) Name() EventName              { return EventTurnComplete }
func (Log) Name() EventName                       { return EventLog }
