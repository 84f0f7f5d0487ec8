package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

var ErrNoAudio = errors.New("no audio reference")

// Player plays an audio reference (URL or local path).
type Player interface {
	Play(ctx context.Context, ref string) error
}

// FFplayPlayer shells out to ffplay without a video window.
type FFplayPlayer struct {
	Binary string
	Volume int
}

func (p FFplayPlayer) Play(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrNoAudio
	}

	binary := p.Binary
	if binary == "" {
		binary = "ffplay"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s is required for playback: %w", binary, err)
	}

	args := []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error"}
	if p.Volume > 0 {
		args = append(args, "-volume", fmt.Sprintf("%d", p.Volume))
	}
	args = append(args, ref)

	out, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("ffplay %s: %w: %s", ref, err, msg)
		}
		return fmt.Errorf("ffplay %s: %w", ref, err)
	}
	return nil
}

// NopPlayer discards playback requests.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error { return nil }

// PlayAndLog plays ref and only logs a failure. Playback problems never
// reach the conversation.
func PlayAndLog(ctx context.Context, player Player, ref string) {
	if player == nil {
		return
	}
	if err := player.Play(ctx, ref); err != nil {
		log.Printf("[playback] %v", err)
	}
}
