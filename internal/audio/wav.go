package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const wavHeaderSize = 44

var (
	ErrNotWAV          = errors.New("audio: not a RIFF/WAVE file")
	ErrUnsupportedWAV  = errors.New("audio: only 16-bit PCM wav is supported")
	ErrMissingWAVChunk = errors.New("audio: wav is missing its fmt or data chunk")
)

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	FmtID         [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataID        [4]byte
	DataSize      uint32
}

type WAV struct {
	SampleRate int
	PCM        []byte
}

func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be positive, got %d", sampleRate)
	}
	pcm = pcm[:len(pcm)&^1]

	const channels, bits = 1, 16
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * bits / 8),
		BlockAlign:    channels * bits / 8,
		BitsPerSample: bits,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// DecodeWAV walks the RIFF chunks of data and returns its audio as mono PCM.
// Stereo input is downmixed; chunks other than fmt and data are skipped.
func DecodeWAV(data []byte) (*WAV, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		format, channels, bits uint16
		rate                   uint32
		haveFmt                bool
		pcm                    []byte
	)

	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		end := body + size
		if size < 0 || end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, ErrMissingWAVChunk
			}
			format = binary.LittleEndian.Uint16(data[body:])
			channels = binary.LittleEndian.Uint16(data[body+2:])
			rate = binary.LittleEndian.Uint32(data[body+4:])
			bits = binary.LittleEndian.Uint16(data[body+14:])
			haveFmt = true
		case "data":
			pcm = data[body:end]
		}

		off = end + size%2
		if pcm != nil && haveFmt {
			break
		}
	}

	if !haveFmt || pcm == nil {
		return nil, ErrMissingWAVChunk
	}
	if format != 1 || bits != 16 || rate == 0 {
		return nil, fmt.Errorf("%w: format=%d bits=%d rate=%d", ErrUnsupportedWAV, format, bits, rate)
	}

	switch channels {
	case 1:
		pcm = append([]byte(nil), pcm[:len(pcm)&^1]...)
	case 2:
		pcm = DownmixStereo(pcm[:len(pcm)&^3])
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedWAV, channels)
	}
	return &WAV{SampleRate: int(rate), PCM: pcm}, nil
}
