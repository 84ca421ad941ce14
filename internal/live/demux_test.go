package live

import (
	"bytes"
	"testing"
)

func TestIsPCMAudio(t *testing.T) {
	tests := []struct {
		name string
		part Part
		want bool
	}{
		{"pcm with rate", Part{InlineData: &Blob{MIMEType: "audio/pcm;rate=24000"}}, true},
		{"plain pcm", Part{InlineData: &Blob{MIMEType: "audio/pcm"}}, true},
		{"wav", Part{InlineData: &Blob{MIMEType: "audio/wav"}}, false},
		{"image", Part{InlineData: &Blob{MIMEType: "image/jpeg"}}, false},
		{"text", TextPart("hello"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPCMAudio(tt.part); got != tt.want {
				t.Errorf("IsPCMAudio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitParts(t *testing.T) {
	a1 := pcmPart([]byte{1})
	a2 := pcmPart([]byte{2})
	dup := TextPart("same")

	audio, other := SplitParts([]Part{dup, a1, dup, a2, TextPart("last")})

	if len(audio) != 2 || audio[0].InlineData != a1.InlineData || audio[1].InlineData != a2.InlineData {
		t.Errorf("audio = %+v", audio)
	}
	if len(other) != 3 {
		t.Fatalf("other = %d parts, want 3 (duplicates kept)", len(other))
	}
	if other[0].Text != "same" || other[1].Text != "same" || other[2].Text != "last" {
		t.Errorf("other = %+v", other)
	}
}

func TestSplitParts_Empty(t *testing.T) {
	audio, other := SplitParts(nil)
	if audio != nil || other != nil {
		t.Errorf("SplitParts(nil) = %v, %v", audio, other)
	}
}

func TestAudioCodecRoundTrip(t *testing.T) {
	payloads := []string{
		"AAECAwQFBgc=",
		"//7+/f38+/o=",
		"",
	}

	for _, encoded := range payloads {
		data, err := DecodeAudio(Part{InlineData: &Blob{MIMEType: "audio/pcm", Data: encoded}})
		if err != nil {
			t.Fatalf("DecodeAudio(%q) error = %v", encoded, err)
		}
		if got := EncodeAudio(data); got != encoded {
			t.Errorf("round trip = %q, want %q", got, encoded)
		}
	}
}

func TestDecodeAudio_Errors(t *testing.T) {
	if _, err := DecodeAudio(TextPart("x")); err == nil {
		t.Error("expected error for part without inline data")
	}
	if _, err := DecodeAudio(Part{InlineData: &Blob{Data: "!!"}}); err == nil {
		t.Error("expected error for invalid base64")
	}
	data, _ := DecodeAudio(pcmPart([]byte{9, 8, 7}))
	if !bytes.Equal(data, []byte{9, 8, 7}) {
		t.Errorf("decoded = %v", data)
	}
}
