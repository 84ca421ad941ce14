package live

import (
	"encoding/base64"
	"errors"
	"strings"
)

const pcmMIMEPrefix = "audio/pcm"

var errNoInlineData = errors.New("part has no inline data")

func IsPCMAudio(p Part) bool {
	return p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, pcmMIMEPrefix)
}

// SplitParts partitions parts into PCM audio parts and everything else. Both
// groups keep their original relative order.
func SplitParts(parts []Part) (audio, other []Part) {
	for _, p := range parts {
		if IsPCMAudio(p) {
			audio = append(audio, p)
		} else {
			other = append(other, p)
		}
	}
	return audio, other
}

func DecodeAudio(p Part) ([]byte, error) {
	if p.InlineData == nil {
		return nil, errNoInlineData
	}
	return base64.StdEncoding.DecodeString(p.InlineData.Data)
}

func EncodeAudio(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
