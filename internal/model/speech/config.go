package speech

import (
	"fmt"
	"strings"
	"time"
)

// Encoding selects the sample format stored inside the WAV container.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm16"
	EncodingMulaw Encoding = "mulaw"
	EncodingAlaw  Encoding = "alaw"
)

// ParseEncoding maps a configuration value onto an Encoding.
func ParseEncoding(raw string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pcm", "pcm16", "s16le":
		return EncodingPCM16, nil
	case "mulaw", "ulaw", "pcmu":
		return EncodingMulaw, nil
	case "alaw", "pcma":
		return EncodingAlaw, nil
	default:
		return "", fmt.Errorf("unsupported audio encoding: %q", raw)
	}
}

// Format describes the raw capture stream and the encoded clip.
type Format struct {
	SampleRate int      `json:"sampleRate"`
	Channels   int      `json:"channels"`
	Encoding   Encoding `json:"encoding"`
}

// DefaultFormat is 16 kHz mono PCM, what most speech recognizers expect.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, Encoding: EncodingPCM16}
}

// BytesPerSecond of the raw little-endian 16-bit capture stream.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// Duration of raw PCM16 data in this format.
func (f Format) Duration(pcmBytes int) time.Duration {
	bps := f.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(pcmBytes) * time.Second / time.Duration(bps)
}
