package speech

import "time"

const (
	// ClipContentType is the MIME type every recorded clip is sent as.
	ClipContentType = "audio/wav"
	// ClipFilename is the multipart filename of the uploaded recording.
	ClipFilename = "audio.wav"
)

// Clip is a finished recording encoded as a single WAV object.
type Clip struct {
	Data        []byte        `json:"-"`
	ContentType string        `json:"contentType"`
	Filename    string        `json:"filename"`
	Format      Format        `json:"format"`
	Duration    time.Duration `json:"duration"`
}

// Empty reports whether the clip carries no samples.
func (c Clip) Empty() bool {
	return c.Duration == 0
}
