package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zaf/g711"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

// WAV format tags.
const (
	wavFormatPCM   = 1
	wavFormatAlaw  = 6
	wavFormatMulaw = 7
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// EncodeWAV wraps raw little-endian 16-bit PCM in a WAV container, companding
// the samples first when the format asks for G.711. A trailing partial frame
// is dropped. Empty input yields a header-only file.
func EncodeWAV(pcm []byte, format speechmodel.Format) ([]byte, error) {
	if format.Channels <= 0 || format.Channels > 2 {
		return nil, fmt.Errorf("%w: only mono (1) or stereo (2) channels supported", ErrUnsupportedFormat)
	}
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrUnsupportedFormat)
	}

	frame := 2 * format.Channels
	pcm = pcm[:len(pcm)-len(pcm)%frame]

	var (
		tag           uint16
		bitsPerSample int
		payload       []byte
	)
	switch format.Encoding {
	case speechmodel.EncodingPCM16, "":
		tag, bitsPerSample, payload = wavFormatPCM, 16, pcm
	case speechmodel.EncodingMulaw:
		tag, bitsPerSample, payload = wavFormatMulaw, 8, g711.EncodeUlaw(pcm)
	case speechmodel.EncodingAlaw:
		tag, bitsPerSample, payload = wavFormatAlaw, 8, g711.EncodeAlaw(pcm)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format.Encoding)
	}

	// non-PCM fmt chunks carry a trailing cbSize field
	fmtSize := 16
	if tag != wavFormatPCM {
		fmtSize = 18
	}

	blockAlign := format.Channels * bitsPerSample / 8
	byteRate := format.SampleRate * blockAlign
	dataSize := len(payload)
	pad := dataSize % 2
	riffSize := 4 + (8 + fmtSize) + (8 + dataSize + pad)

	buf := bytes.NewBuffer(make([]byte, 0, 8+riffSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(fmtSize))
	binary.Write(buf, binary.LittleEndian, tag)
	binary.Write(buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	if tag != wavFormatPCM {
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(payload)
	if pad == 1 {
		buf.WriteByte(0)
	}

	return buf.Bytes(), nil
}

// NewClip encodes pcm into the clip shape the voice endpoint expects.
func NewClip(pcm []byte, format speechmodel.Format) (speechmodel.Clip, error) {
	data, err := EncodeWAV(pcm, format)
	if err != nil {
		return speechmodel.Clip{}, err
	}
	return speechmodel.Clip{
		Data:        data,
		ContentType: speechmodel.ClipContentType,
		Filename:    speechmodel.ClipFilename,
		Format:      format,
		Duration:    format.Duration(len(pcm)),
	}, nil
}

// WAVInfo is the parsed header of a WAV file.
type WAVInfo struct {
	FormatTag     uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	Data          []byte
}

// DecodeWAV walks the RIFF chunks of data and returns the fmt and data
// contents. Unknown chunks are skipped.
func DecodeWAV(data []byte) (WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return WAVInfo{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var info WAVInfo
	var sawFmt, sawData bool
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(data) {
			return WAVInfo{}, fmt.Errorf("%w: truncated %q chunk", ErrUnsupportedFormat, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return WAVInfo{}, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			chunk := data[body : body+size]
			info.FormatTag = binary.LittleEndian.Uint16(chunk[0:2])
			info.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(chunk[14:16]))
			sawFmt = true
		case "data":
			info.Data = data[body : body+size]
			sawData = true
		}

		offset = body + size + size%2
	}

	if !sawFmt || !sawData {
		return WAVInfo{}, fmt.Errorf("%w: missing fmt or data chunk", ErrUnsupportedFormat)
	}
	return info, nil
}

// PCM16 returns the samples of info as 16-bit little-endian PCM.
func (info WAVInfo) PCM16() ([]byte, error) {
	switch info.FormatTag {
	case wavFormatPCM:
		if info.BitsPerSample != 16 {
			return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, info.BitsPerSample)
		}
		return info.Data, nil
	case wavFormatMulaw:
		return g711.DecodeUlaw(info.Data), nil
	case wavFormatAlaw:
		return g711.DecodeAlaw(info.Data), nil
	default:
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, info.FormatTag)
	}
}
