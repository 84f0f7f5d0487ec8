package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

func TestFFmpegCaptureArgs(t *testing.T) {
	format := speechmodel.Format{SampleRate: 16000, Channels: 1}

	linux, err := ffmpegCaptureArgs("linux", "", format)
	if err != nil {
		t.Fatalf("linux args err: %v", err)
	}
	got := strings.Join(linux, " ")
	if !strings.Contains(got, "-f pulse -i default") || !strings.HasSuffix(got, "-ac 1 -ar 16000 -f s16le -") {
		t.Fatalf("unexpected linux args: %s", got)
	}

	darwin, err := ffmpegCaptureArgs("darwin", "", format)
	if err != nil {
		t.Fatalf("darwin args err: %v", err)
	}
	if !strings.Contains(strings.Join(darwin, " "), "-f avfoundation -i :0") {
		t.Fatalf("unexpected darwin args: %v", darwin)
	}

	windows, err := ffmpegCaptureArgs("windows", "Microphone (USB)", format)
	if err != nil {
		t.Fatalf("windows args err: %v", err)
	}
	if !strings.Contains(strings.Join(windows, " "), "-i audio=Microphone (USB)") {
		t.Fatalf("unexpected windows args: %v", windows)
	}

	if _, err := ffmpegCaptureArgs("windows", "", format); err == nil {
		t.Fatal("expected error without a windows device")
	}
	if _, err := ffmpegCaptureArgs("plan9", "", format); err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}

func TestFFmpegSourceMissingBinary(t *testing.T) {
	src := FFmpegSource{Binary: "definitely-not-ffmpeg-binary"}
	if _, err := src.Open(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestFFplayPlayerRejectsEmptyReference(t *testing.T) {
	err := FFplayPlayer{}.Play(context.Background(), " ")
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

type recordingPlayer struct {
	refs []string
	err  error
}

func (p *recordingPlayer) Play(_ context.Context, ref string) error {
	p.refs = append(p.refs, ref)
	return p.err
}

func TestPlayAndLogSwallowsErrors(t *testing.T) {
	player := &recordingPlayer{err: errors.New("no device")}
	PlayAndLog(context.Background(), player, "http://localhost:8000/a.wav")
	if len(player.refs) != 1 {
		t.Fatalf("expected playback attempt, got %v", player.refs)
	}
	PlayAndLog(context.Background(), nil, "ignored")
}
