package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

var (
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrAlreadyRecording      = errors.New("recording already in progress")
)

const defaultChunkSize = 4096

// Status is the state of the capture controller.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
)

// Source opens the capture device. Closing the returned stream releases it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// CaptureOptions configures a Capture.
type CaptureOptions struct {
	Format speechmodel.Format
	// Notify receives user-facing text when the device cannot be used.
	Notify func(message string)
	// UnavailableMessage is the text handed to Notify.
	UnavailableMessage string
	// OnComplete receives every clip produced by Stop.
	OnComplete func(speechmodel.Clip)
	ChunkSize  int
}

// Capture records from a Source between Start and Stop and turns the
// buffered chunks into one WAV clip.
type Capture struct {
	source Source
	opts   CaptureOptions

	mu        sync.Mutex
	status    Status
	stopping  bool
	stream    io.ReadCloser
	chunks    [][]byte
	buffered  int
	startedAt time.Time
	done      chan struct{}
}

// NewCapture creates an idle controller reading from source.
func NewCapture(source Source, opts CaptureOptions) *Capture {
	if opts.Format == (speechmodel.Format{}) {
		opts.Format = speechmodel.DefaultFormat()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	return &Capture{source: source, opts: opts, status: StatusIdle}
}

// Status returns the current state.
func (c *Capture) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Recording reports whether a recording is in progress.
func (c *Capture) Recording() bool {
	return c.Status() == StatusRecording
}

// Elapsed is the time since the running recording started.
func (c *Capture) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRecording {
		return 0
	}
	return time.Since(c.startedAt)
}

// Buffered returns the number of raw bytes captured so far.
func (c *Capture) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffered
}

// Start requests the device and begins buffering. On failure the
// controller stays idle and the user is notified.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusRecording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}

	stream, err := c.source.Open(ctx)
	if err != nil {
		c.mu.Unlock()
		log.Printf("[capture] open microphone failed: %v", err)
		c.notify()
		return fmt.Errorf("%w: %w", ErrMicrophoneUnavailable, err)
	}
	defer c.mu.Unlock()

	c.chunks = nil
	c.buffered = 0
	c.stream = stream
	c.stopping = false
	c.startedAt = time.Now()
	c.done = make(chan struct{})
	c.status = StatusRecording

	go c.readLoop(stream, c.done)
	return nil
}

// Stop releases the device, encodes everything buffered since Start into a
// single clip, hands it to OnComplete and returns it. Calling Stop while
// idle does nothing and reports false.
func (c *Capture) Stop() (speechmodel.Clip, bool, error) {
	pcm, ok := c.halt()
	if !ok {
		return speechmodel.Clip{}, false, nil
	}

	clip, err := NewClip(pcm, c.opts.Format)
	if err != nil {
		return speechmodel.Clip{}, false, fmt.Errorf("encode recording: %w", err)
	}

	log.Printf("[capture] recording finished: %d bytes, %s", len(pcm), clip.Duration)
	if c.opts.OnComplete != nil {
		c.opts.OnComplete(clip)
	}
	return clip, true, nil
}

// Cancel releases the device and drops the buffered audio without producing
// a clip.
func (c *Capture) Cancel() bool {
	_, ok := c.halt()
	return ok
}

// halt closes the stream, waits for the reader and returns the buffered
// audio, leaving the controller idle.
func (c *Capture) halt() ([]byte, bool) {
	c.mu.Lock()
	if c.status != StatusRecording || c.stopping {
		c.mu.Unlock()
		return nil, false
	}
	c.stopping = true
	stream, done := c.stream, c.done
	c.mu.Unlock()

	if err := stream.Close(); err != nil {
		log.Printf("[capture] close stream: %v", err)
	}
	<-done

	c.mu.Lock()
	chunks := c.chunks
	size := c.buffered
	c.chunks = nil
	c.buffered = 0
	c.stream = nil
	c.done = nil
	c.stopping = false
	c.status = StatusIdle
	c.mu.Unlock()

	pcm := make([]byte, 0, size)
	for _, chunk := range chunks {
		pcm = append(pcm, chunk...)
	}
	return pcm, true
}

// Record captures for d (or until ctx ends) and returns the clip.
func (c *Capture) Record(ctx context.Context, d time.Duration) (speechmodel.Clip, error) {
	if err := c.Start(ctx); err != nil {
		return speechmodel.Clip{}, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	clip, _, err := c.Stop()
	return clip, err
}

func (c *Capture) readLoop(stream io.ReadCloser, done chan struct{}) {
	defer close(done)

	buf := make([]byte, c.opts.ChunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			c.mu.Lock()
			c.chunks = append(c.chunks, chunk)
			c.buffered += n
			c.mu.Unlock()
		}
		if err == nil {
			continue
		}

		c.mu.Lock()
		stopping := c.stopping
		c.mu.Unlock()
		if stopping {
			return
		}

		log.Printf("[capture] microphone stream ended: %v", err)
		_ = stream.Close()
		c.notify()
		return
	}
}

func (c *Capture) notify() {
	if c.opts.Notify != nil && c.opts.UnavailableMessage != "" {
		c.opts.Notify(c.opts.UnavailableMessage)
	}
}
