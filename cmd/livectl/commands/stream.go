package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/live-console/internal/audio"
	"github.com/eleven-am/live-console/internal/live"
)

var (
	chunkDuration time.Duration
	trailSilence  time.Duration
	noPacing      bool
)

var streamCmd = &cobra.Command{
	Use:   "stream <file.wav>",
	Short: "Stream a WAV file as realtime audio",
	Long: `Stream a 16-bit PCM WAV file to the model as realtime audio input and
record the reply. The file is resampled to 16 kHz mono when needed and sent
in chunks at playback speed, followed by a short silence so the model detects
the end of speech.

Examples:
  livectl stream question.wav -o answer.wav
  livectl stream question.wav --no-pacing --chunk 250ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		chunks, err := realtimeChunks(data, chunkDuration, trailSilence)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		printVerbose(cmd.ErrOrStderr(), "streaming %d chunks of %s", len(chunks), chunkDuration)

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		logger := newLogger(cmd.ErrOrStderr())
		client, cfg, err := newClient(ctx, logger)
		if err != nil {
			return err
		}

		cv := newConversation(client, cmd.OutOrStdout(), cmd.ErrOrStderr())
		defer cv.close()

		pace := chunkDuration
		if noPacing {
			pace = 0
		}
		return runStream(ctx, client, cfg, cv, chunks, pace)
	},
}

func realtimeChunks(wavData []byte, d, silence time.Duration) ([]live.RealtimeChunk, error) {
	wav, err := audio.DecodeWAV(wavData)
	if err != nil {
		return nil, err
	}

	pcm := audio.ResamplePCM(wav.PCM, wav.SampleRate, audio.InputRate)
	if silence > 0 {
		pcm = append(pcm, make([]byte, int(int64(audio.InputRate)*int64(silence)/int64(time.Second))*2)...)
	}

	mime := audio.PCMMIMEType(audio.InputRate)
	frames := audio.Chunk(pcm, audio.InputRate, d)
	chunks := make([]live.RealtimeChunk, len(frames))
	for i, f := range frames {
		chunks[i] = live.RealtimeChunk{MIMEType: mime, Data: live.EncodeAudio(f)}
	}
	return chunks, nil
}

func runStream(ctx context.Context, client *live.Client, cfg *live.SessionConfig, cv *conversation, chunks []live.RealtimeChunk, pace time.Duration) error {
	if err := client.Connect(ctx, cfg); err != nil {
		return err
	}
	defer client.Disconnect()

	var ticker *time.Ticker
	if pace > 0 {
		ticker = time.NewTicker(pace)
		defer ticker.Stop()
	}

	for _, chunk := range chunks {
		if err := client.SendRealtimeInput([]live.RealtimeChunk{chunk}); err != nil {
			return fmt.Errorf("send audio: %w", err)
		}
		if ticker == nil {
			continue
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := cv.wait(ctx); err != nil {
		return err
	}
	return cv.save(outputFile)
}

func init() {
	streamCmd.Flags().DurationVar(&chunkDuration, "chunk", 100*time.Millisecond, "length of each realtime chunk")
	streamCmd.Flags().DurationVar(&trailSilence, "silence", time.Second, "silence appended after the file")
	streamCmd.Flags().BoolVar(&noPacing, "no-pacing", false, "send chunks as fast as possible")
}
