package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/eleven-am/live-console/internal/audio"
	"github.com/eleven-am/live-console/internal/live"
)

var errSessionClosed = errors.New("session closed before the turn completed")

// conversation prints one exchange with the model as it happens and collects
// the audio reply. Tool calls are answered with empty results so the model
// can finish its turn.
type conversation struct {
	client *live.Client
	out    io.Writer
	errOut io.Writer

	mu       sync.Mutex
	audio    bytes.Buffer
	speaking bool

	done chan error
	once sync.Once
	subs []live.Subscription
}

func newConversation(client *live.Client, out, errOut io.Writer) *conversation {
	cv := &conversation{
		client: client,
		out:    out,
		errOut: errOut,
		done:   make(chan error, 1),
	}

	cv.subs = append(cv.subs,
		live.On(client, func(ev live.InputTranscription) {
			if ev.Text != "" {
				fmt.Fprintf(out, "[you] %s\n", ev.Text)
			}
		}),
		live.On(client, func(ev live.OutputTranscription) {
			cv.say(ev.Text)
		}),
		live.On(client, func(ev live.ContentEvent) {
			for _, p := range ev.ModelTurn.Parts {
				if p.Text != "" && !p.Thought {
					cv.say(p.Text)
				}
			}
		}),
		live.On(client, func(ev live.Audio) {
			cv.mu.Lock()
			cv.audio.Write(ev.Data)
			cv.mu.Unlock()
		}),
		live.On(client, func(ev live.ToolCallEvent) {
			cv.answerTools(ev.ToolCall)
		}),
		live.On(client, func(live.Interrupted) {
			cv.endLine()
			fmt.Fprintln(errOut, "[interrupted]")
		}),
		live.On(client, func(live.TurnComplete) {
			cv.finish(nil)
		}),
		live.On(client, func(ev live.Close) {
			if ev.Reason != "" {
				cv.finish(fmt.Errorf("%w: %s", errSessionClosed, ev.Reason))
				return
			}
			cv.finish(errSessionClosed)
		}),
		live.On(client, func(ev live.Error) {
			cv.finish(errors.New(ev.Message))
		}),
		live.On(client, func(ev live.Log) {
			printVerbose(errOut, "%s %s", ev.Entry.Type, describe(ev.Entry.Message))
		}),
	)
	return cv
}

func (cv *conversation) say(text string) {
	if text == "" {
		return
	}
	cv.mu.Lock()
	if !cv.speaking {
		cv.speaking = true
		fmt.Fprint(cv.out, "[model] ")
	}
	cv.mu.Unlock()
	fmt.Fprint(cv.out, text)
}

func (cv *conversation) endLine() {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	if cv.speaking {
		cv.speaking = false
		fmt.Fprintln(cv.out)
	}
}

func (cv *conversation) answerTools(call live.ToolCall) {
	resp := live.ToolResponse{FunctionResponses: make([]live.FunctionResponse, 0, len(call.FunctionCalls))}
	for _, fc := range call.FunctionCalls {
		fmt.Fprintf(cv.errOut, "[tool] %s called, answering with an empty result\n", fc.Name)
		resp.FunctionResponses = append(resp.FunctionResponses, live.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: map[string]any{},
		})
	}
	if err := cv.client.SendToolResponse(resp); err != nil {
		cv.finish(fmt.Errorf("answer tool call: %w", err))
	}
}

func (cv *conversation) finish(err error) {
	cv.once.Do(func() {
		cv.endLine()
		cv.done <- err
	})
}

func (cv *conversation) wait(ctx context.Context) error {
	select {
	case err := <-cv.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cv *conversation) close() {
	for _, sub := range cv.subs {
		cv.client.Unsubscribe(sub)
	}
}

func (cv *conversation) pcm() []byte {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return bytes.Clone(cv.audio.Bytes())
}

// save writes the collected reply as a WAV file. Nothing is written when the
// path is empty or no audio arrived.
func (cv *conversation) save(path string) error {
	pcm := cv.pcm()
	if path == "" || len(pcm) == 0 {
		return nil
	}
	data, err := audio.EncodeWAV(pcm, audio.OutputRate)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cv.errOut, "audio saved to %s (%s)\n", path, audio.PCMDuration(pcm, audio.OutputRate))
	return nil
}

func describe(msg any) string {
	switch m := msg.(type) {
	case string:
		return m
	case nil:
		return ""
	default:
		return fmt.Sprintf("%+v", m)
	}
}
