package live

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func pcmPart(data []byte) Part {
	return Part{InlineData: &Blob{MIMEType: "audio/pcm;rate=24000", Data: EncodeAudio(data)}}
}

func TestDispatch_TranscriptionAudioAndText(t *testing.T) {
	c, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{
		InputTranscription: &Transcription{Text: "hello", IsFinal: true},
		ModelTurn: &Content{Parts: []Part{
			pcmPart([]byte{1, 2, 3, 4}),
			TextPart("hi there"),
		}},
	})

	want := []EventName{EventInputTranscription, EventAudio, EventContent}
	if got := rec.names(); !equalNames(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	for _, ev := range rec.events {
		switch e := ev.(type) {
		case InputTranscription:
			if e.Text != "hello" || !e.IsFinal {
				t.Errorf("input transcription = %+v", e)
			}
		case ContentEvent:
			if len(e.ModelTurn.Parts) != 1 || e.ModelTurn.Parts[0].Text != "hi there" {
				t.Errorf("content parts = %+v, want the text part only", e.ModelTurn.Parts)
			}
		}
	}
	_ = c
}

func TestDispatch_AudioPartitionPreservesOrder(t *testing.T) {
	_, tr, rec := connectedClient(t)
	audioA := []byte{0xA, 0xA}
	audioB := []byte{0xB, 0xB, 0xB}

	tr.callbacks().OnMessage(&ServerContent{ModelTurn: &Content{Parts: []Part{
		pcmPart(audioA),
		TextPart("text1"),
		pcmPart(audioB),
		TextPart("text2"),
	}}})

	var buffers [][]byte
	var content []ContentEvent
	for _, ev := range rec.events {
		switch e := ev.(type) {
		case Audio:
			buffers = append(buffers, e.Data)
		case ContentEvent:
			content = append(content, e)
		}
	}

	if len(buffers) != 2 {
		t.Fatalf("audio events = %d, want 2", len(buffers))
	}
	if !bytes.Equal(buffers[0], audioA) || !bytes.Equal(buffers[1], audioB) {
		t.Errorf("audio buffers = %v, want [%v %v]", buffers, audioA, audioB)
	}
	if len(content) != 1 {
		t.Fatalf("content events = %d, want 1", len(content))
	}
	parts := content[0].ModelTurn.Parts
	if len(parts) != 2 || parts[0].Text != "text1" || parts[1].Text != "text2" {
		t.Errorf("content parts = %+v, want [text1 text2]", parts)
	}

	var audioLogs []string
	for _, l := range rec.logs() {
		if l.Type == LogServerAudio {
			audioLogs = append(audioLogs, l.Message.(string))
		}
	}
	if len(audioLogs) != 2 || audioLogs[0] != "buffer (2)" || audioLogs[1] != "buffer (3)" {
		t.Errorf("audio logs = %v", audioLogs)
	}
}

func TestDispatch_AudioOnlyTurnHasNoContent(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{ModelTurn: &Content{Parts: []Part{pcmPart([]byte{1, 2})}}})

	if got := rec.names(); !equalNames(got, []EventName{EventAudio}) {
		t.Errorf("events = %v, want [audio]", got)
	}
}

func TestDispatch_NonPCMInlineDataIsContent(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{ModelTurn: &Content{Parts: []Part{
		{InlineData: &Blob{MIMEType: "image/png", Data: "iVBORw0KGgo="}},
	}}})

	if got := rec.names(); !equalNames(got, []EventName{EventContent}) {
		t.Errorf("events = %v, want [content]", got)
	}
}

func TestDispatch_UndecodableAudioIsSkipped(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{ModelTurn: &Content{Parts: []Part{
		{InlineData: &Blob{MIMEType: "audio/pcm", Data: "%%%not-base64"}},
		pcmPart([]byte{7}),
	}}})

	if got := rec.names(); !equalNames(got, []EventName{EventAudio}) {
		t.Errorf("events = %v, want [audio]", got)
	}
	logs := rec.logs()
	if len(logs) == 0 || logs[0].Type != LogServerError {
		t.Errorf("first log = %+v, want %s", logs, LogServerError)
	}
}

func TestDispatch_InterruptedShortCircuits(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{
		Interrupted:         true,
		InputTranscription:  &Transcription{Text: "ignored"},
		OutputTranscription: &Transcription{Text: "ignored"},
		ModelTurn:           &Content{Parts: []Part{TextPart("ignored")}},
		TurnComplete:        true,
	})

	if got := rec.names(); !equalNames(got, []EventName{EventInterrupted}) {
		t.Errorf("events = %v, want [interrupted]", got)
	}
	logs := rec.logs()
	if len(logs) != 1 || logs[0].Type != LogServerInterrupted {
		t.Errorf("logs = %+v", logs)
	}
}

func TestDispatch_AllSignalsInOrder(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&ServerContent{
		InputTranscription:  &Transcription{Text: "question"},
		OutputTranscription: &Transcription{Text: "answer", IsFinal: true},
		ModelTurn:           &Content{Parts: []Part{TextPart("answer"), pcmPart([]byte{1})}},
		TurnComplete:        true,
	})

	want := []EventName{
		EventInputTranscription,
		EventOutputTranscription,
		EventAudio,
		EventContent,
		EventTurnComplete,
	}
	if got := rec.names(); !equalNames(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if n := len(rec.logs()); n != len(want) {
		t.Errorf("logs = %d, want %d", n, len(want))
	}
}

func TestDispatch_TopLevelMessages(t *testing.T) {
	tests := []struct {
		name    string
		msg     InboundMessage
		event   EventName
		logType string
	}{
		{"setup complete", &SetupComplete{}, EventSetupComplete, LogServerSetupComplete},
		{"tool call", &ToolCall{FunctionCalls: []FunctionCall{{ID: "c1", Name: "get_weather"}}}, EventToolCall, LogServerToolCall},
		{"cancellation", &ToolCallCancellation{IDs: []string{"c1"}}, EventToolCallCancellation, LogServerToolCallCancellation},
		{"turn complete", &ServerContent{TurnComplete: true}, EventTurnComplete, LogServerTurnComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tr, rec := connectedClient(t)
			tr.callbacks().OnMessage(tt.msg)

			if got := rec.names(); !equalNames(got, []EventName{tt.event}) {
				t.Errorf("events = %v, want [%s]", got, tt.event)
			}
			logs := rec.logs()
			if len(logs) != 1 || logs[0].Type != tt.logType {
				t.Errorf("logs = %+v, want one %s", logs, tt.logType)
			}
		})
	}
}

func TestDispatch_ToolCallPayload(t *testing.T) {
	_, tr, rec := connectedClient(t)
	call := &ToolCall{FunctionCalls: []FunctionCall{{ID: "c1", Name: "get_weather", Args: map[string]any{"city": "Paris"}}}}

	tr.callbacks().OnMessage(call)

	for _, ev := range rec.events {
		if e, ok := ev.(ToolCallEvent); ok {
			if len(e.ToolCall.FunctionCalls) != 1 || e.ToolCall.FunctionCalls[0].Args["city"] != "Paris" {
				t.Errorf("tool call payload = %+v", e.ToolCall)
			}
			return
		}
	}
	t.Fatal("no toolcall event")
}

func TestDispatch_GoAwayOnlyLogs(t *testing.T) {
	_, tr, rec := connectedClient(t)

	tr.callbacks().OnMessage(&GoAway{TimeLeft: 30 * time.Second})

	if len(rec.names()) != 0 {
		t.Errorf("events = %v, want none", rec.names())
	}
	logs := rec.logs()
	if len(logs) != 1 || logs[0].Type != LogServerGoAway {
		t.Fatalf("logs = %+v", logs)
	}
	if !strings.Contains(logs[0].Message.(string), "30s") {
		t.Errorf("goAway message = %v", logs[0].Message)
	}
}

func TestDispatch_NilPayloadsIgnored(t *testing.T) {
	_, tr, rec := connectedClient(t)

	var tc *ToolCall
	var sc *ServerContent
	tr.callbacks().OnMessage(tc)
	tr.callbacks().OnMessage(sc)

	if len(rec.names()) != 0 || len(rec.logs()) != 0 {
		t.Errorf("nil messages produced events: %v", rec.names())
	}
}
