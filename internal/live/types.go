package live

import "time"

type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

type ExecutableCode struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

type CodeExecutionResult struct {
	Outcome string `json:"outcome,omitempty"`
	Output  string `json:"output,omitempty"`
}

// Part is one unit of turn content. Exactly one field is expected to be set;
// anything other than InlineData is treated as opaque by the client.
type Part struct {
	InlineData          *Blob                `json:"inlineData,omitempty"`
	Text                string               `json:"text,omitempty"`
	Thought             bool                 `json:"thought,omitempty"`
	FunctionCall        *FunctionCall        `json:"functionCall,omitempty"`
	FunctionResponse    *FunctionResponse    `json:"functionResponse,omitempty"`
	ExecutableCode      *ExecutableCode      `json:"executableCode,omitempty"`
	CodeExecutionResult *CodeExecutionResult `json:"codeExecutionResult,omitempty"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Transcription struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal,omitempty"`
}

type RealtimeChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

type FunctionDeclaration struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Parameters  any    `json:"parameters,omitempty" yaml:"parameters"`
}

type SessionConfig struct {
	ResponseModalities  []string              `json:"responseModalities,omitempty" yaml:"response_modalities"`
	Voice               string                `json:"voice,omitempty" yaml:"voice"`
	LanguageCode        string                `json:"languageCode,omitempty" yaml:"language_code"`
	SystemInstruction   string                `json:"systemInstruction,omitempty" yaml:"system_instruction"`
	InputTranscription  bool                  `json:"inputTranscription,omitempty" yaml:"input_transcription"`
	OutputTranscription bool                  `json:"outputTranscription,omitempty" yaml:"output_transcription"`
	GoogleSearch        bool                  `json:"googleSearch,omitempty" yaml:"google_search"`
	Functions           []FunctionDeclaration `json:"functions,omitempty" yaml:"functions"`
}

type InboundMessage interface {
	inbound()
}

type SetupComplete struct {
	SessionID string `json:"sessionId,omitempty"`
}

type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

type ToolCallCancellation struct {
	IDs []string `json:"ids"`
}

// ServerContent carries independent optional signals. Interrupted wins over
// everything else in the same message.
type ServerContent struct {
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	ModelTurn           *Content       `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

type GoAway struct {
	TimeLeft time.Duration `json:"timeLeft"`
}

func (*SetupComplete) inbound()        {}
func (*ToolCall) inbound()             {}
func (*ToolCallCancellation) inbound() {}
func (*ServerContent) inbound()        {}
func (*GoAway) inbound()               {}
