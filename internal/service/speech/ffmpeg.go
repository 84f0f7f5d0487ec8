package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

// FFmpegSource captures the default microphone through an ffmpeg child
// process writing raw s16le PCM to stdout.
type FFmpegSource struct {
	Binary string
	// Input overrides the platform default device.
	Input  string
	Format speechmodel.Format
}

// Open starts ffmpeg. The context only bounds process startup; the stream
// lives until Close.
func (s FFmpegSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary := s.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%s is required for microphone capture: %w", binary, err)
	}

	args, err := ffmpegCaptureArgs(runtime.GOOS, s.Input, s.Format)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	stream := &ffmpegStream{cmd: cmd, stdout: stdout}
	cmd.Stderr = &stream.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg capture: %w", err)
	}
	return stream, nil
}

func ffmpegCaptureArgs(goos, input string, format speechmodel.Format) ([]string, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		format = speechmodel.DefaultFormat()
	}

	var device []string
	switch goos {
	case "darwin":
		if input == "" {
			input = ":0"
		}
		device = []string{"-f", "avfoundation", "-i", input}
	case "linux":
		if input == "" {
			input = "default"
		}
		device = []string{"-f", "pulse", "-i", input}
	case "windows":
		if input == "" {
			return nil, errors.New("microphone capture on windows needs SUPPORTDESK_MIC_INPUT set to a dshow device name")
		}
		if !strings.HasPrefix(input, "audio=") {
			input = "audio=" + input
		}
		device = []string{"-f", "dshow", "-i", input}
	default:
		return nil, fmt.Errorf("microphone capture is not implemented for %s", goos)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, device...)
	args = append(args,
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", "s16le", "-",
	)
	return args, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	once   sync.Once
	mu     sync.Mutex
	closed bool
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			// ffmpeg exited on its own, usually a device or permission problem
			waitErr := s.cmd.Wait()
			msg := strings.TrimSpace(s.stderr.String())
			if msg == "" && waitErr != nil {
				msg = waitErr.Error()
			}
			if msg != "" {
				return n, fmt.Errorf("ffmpeg capture stopped: %s", msg)
			}
		}
	}
	return n, err
}

func (s *ffmpegStream) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
			_ = s.cmd.Wait()
		}
	})
	return nil
}
