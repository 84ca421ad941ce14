package genailive

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/eleven-am/live-console/internal/live"
	"google.golang.org/genai"
)

// ConnectConfig maps a session config onto the SDK's connect options.
// Audio is the default response modality.
func ConnectConfig(cfg *live.SessionConfig) *genai.LiveConnectConfig {
	out := &genai.LiveConnectConfig{}
	if cfg == nil {
		out.ResponseModalities = []genai.Modality{genai.ModalityAudio}
		return out
	}

	for _, m := range cfg.ResponseModalities {
		out.ResponseModalities = append(out.ResponseModalities, genai.Modality(strings.ToUpper(m)))
	}
	if len(out.ResponseModalities) == 0 {
		out.ResponseModalities = []genai.Modality{genai.ModalityAudio}
	}

	if cfg.Voice != "" || cfg.LanguageCode != "" {
		out.SpeechConfig = &genai.SpeechConfig{LanguageCode: cfg.LanguageCode}
		if cfg.Voice != "" {
			out.SpeechConfig.VoiceConfig = &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			}
		}
	}

	if cfg.SystemInstruction != "" {
		out.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.InputTranscription {
		out.InputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}
	if cfg.OutputTranscription {
		out.OutputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}

	if cfg.GoogleSearch {
		out.Tools = append(out.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if len(cfg.Functions) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(cfg.Functions))
		for _, fn := range cfg.Functions {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 fn.Name,
				Description:          fn.Description,
				ParametersJsonSchema: fn.Parameters,
			})
		}
		out.Tools = append(out.Tools, &genai.Tool{FunctionDeclarations: decls})
	}
	return out
}

// Inbound converts a server message into the single variant it represents.
// When the SDK populates several fields, setup completion wins, then tool
// calls, cancellations, server content and finally go-away notices. A message
// carrying none of them yields nil.
func Inbound(msg *genai.LiveServerMessage) live.InboundMessage {
	if msg == nil {
		return nil
	}
	switch {
	case msg.SetupComplete != nil:
		return &live.SetupComplete{SessionID: msg.SetupComplete.SessionID}
	case msg.ToolCall != nil:
		return toolCall(msg.ToolCall)
	case msg.ToolCallCancellation != nil:
		return &live.ToolCallCancellation{IDs: append([]string(nil), msg.ToolCallCancellation.IDs...)}
	case msg.ServerContent != nil:
		return serverContent(msg.ServerContent)
	case msg.GoAway != nil:
		return &live.GoAway{TimeLeft: msg.GoAway.TimeLeft}
	}
	return nil
}

func toolCall(tc *genai.LiveServerToolCall) *live.ToolCall {
	out := &live.ToolCall{FunctionCalls: make([]live.FunctionCall, 0, len(tc.FunctionCalls))}
	for _, fc := range tc.FunctionCalls {
		if fc == nil {
			continue
		}
		out.FunctionCalls = append(out.FunctionCalls, live.FunctionCall{ID: fc.ID, Name: fc.Name, Args: fc.Args})
	}
	return out
}

func serverContent(sc *genai.LiveServerContent) *live.ServerContent {
	out := &live.ServerContent{
		Interrupted:  sc.Interrupted,
		TurnComplete: sc.TurnComplete,
	}
	if t := sc.InputTranscription; t != nil {
		out.InputTranscription = &live.Transcription{Text: t.Text, IsFinal: t.Finished}
	}
	if t := sc.OutputTranscription; t != nil {
		out.OutputTranscription = &live.Transcription{Text: t.Text, IsFinal: t.Finished}
	}
	if sc.ModelTurn != nil {
		out.ModelTurn = &live.Content{Parts: FromParts(sc.ModelTurn.Parts)}
	}
	return out
}

func FromParts(parts []*genai.Part) []live.Part {
	out := make([]live.Part, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		lp := live.Part{Text: p.Text, Thought: p.Thought}
		if p.InlineData != nil {
			lp.InlineData = &live.Blob{
				MIMEType: p.InlineData.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
			}
		}
		if fc := p.FunctionCall; fc != nil {
			lp.FunctionCall = &live.FunctionCall{ID: fc.ID, Name: fc.Name, Args: fc.Args}
		}
		if fr := p.FunctionResponse; fr != nil {
			lp.FunctionResponse = &live.FunctionResponse{ID: fr.ID, Name: fr.Name, Response: fr.Response}
		}
		if ec := p.ExecutableCode; ec != nil {
			lp.ExecutableCode = &live.ExecutableCode{Language: string(ec.Language), Code: ec.Code}
		}
		if cr := p.CodeExecutionResult; cr != nil {
			lp.CodeExecutionResult = &live.CodeExecutionResult{Outcome: string(cr.Outcome), Output: cr.Output}
		}
		out = append(out, lp)
	}
	return out
}

func ToParts(parts []live.Part) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		gp := &genai.Part{Text: p.Text, Thought: p.Thought}
		if p.InlineData != nil {
			blob, err := toBlob(p.InlineData.MIMEType, p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
			gp.InlineData = blob
		}
		if fc := p.FunctionCall; fc != nil {
			gp.FunctionCall = &genai.FunctionCall{ID: fc.ID, Name: fc.Name, Args: fc.Args}
		}
		if fr := p.FunctionResponse; fr != nil {
			gp.FunctionResponse = functionResponse(*fr)
		}
		if ec := p.ExecutableCode; ec != nil {
			gp.ExecutableCode = &genai.ExecutableCode{Language: genai.Language(ec.Language), Code: ec.Code}
		}
		if cr := p.CodeExecutionResult; cr != nil {
			gp.CodeExecutionResult = &genai.CodeExecutionResult{Outcome: genai.Outcome(cr.Outcome), Output: cr.Output}
		}
		out = append(out, gp)
	}
	return out, nil
}

// RealtimeInput routes a chunk to the audio, video or generic media slot by
// its MIME type.
func RealtimeInput(chunk live.RealtimeChunk) (genai.LiveRealtimeInput, error) {
	blob, err := toBlob(chunk.MIMEType, chunk.Data)
	if err != nil {
		return genai.LiveRealtimeInput{}, err
	}
	switch {
	case strings.HasPrefix(chunk.MIMEType, "audio/"):
		return genai.LiveRealtimeInput{Audio: blob}, nil
	case strings.HasPrefix(chunk.MIMEType, "image/"):
		return genai.LiveRealtimeInput{Video: blob}, nil
	default:
		return genai.LiveRealtimeInput{Media: blob}, nil
	}
}

func ToolResponseInput(resp live.ToolResponse) genai.LiveToolResponseInput {
	out := genai.LiveToolResponseInput{FunctionResponses: make([]*genai.FunctionResponse, 0, len(resp.FunctionResponses))}
	for _, fr := range resp.FunctionResponses {
		out.FunctionResponses = append(out.FunctionResponses, functionResponse(fr))
	}
	return out
}

func functionResponse(fr live.FunctionResponse) *genai.FunctionResponse {
	response := fr.Response
	if response == nil {
		response = map[string]any{}
	}
	return &genai.FunctionResponse{ID: fr.ID, Name: fr.Name, Response: response}
}

func toBlob(mimeType, data string) (*genai.Blob, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", mimeType, err)
	}
	return &genai.Blob{MIMEType: mimeType, Data: raw}, nil
}
