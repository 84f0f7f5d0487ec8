// Package session builds the per-run context shared by every presentation
// surface.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/config"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/assistant"
	chatservice "github.com/numan-developer-2/Customer-Support-Agent/internal/service/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/identity"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/orchestrator"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/speech"
)

// ErrRecordingActive is returned by SendText while the microphone is open.
var ErrRecordingActive = errors.New("a recording is in progress")

// Options overrides the collaborators New would otherwise build from config.
type Options struct {
	Store      identity.Store
	Source     speech.Source
	Player     speech.Player
	HTTPClient *http.Client
}

// Session owns identity, log, client, orchestrator and capture for one run.
type Session struct {
	catalog      locale.Catalog
	identity     *identity.Identity
	log          *chatservice.Service
	client       *assistant.Client
	orchestrator *orchestrator.Orchestrator
	capture      *speech.Capture
	player       speech.Player
	format       speechmodel.Format

	mu     sync.RWMutex
	notify func(string)
}

// New wires a session from cfg.
func New(cfg *config.Config, opts Options) (*Session, error) {
	client, err := assistant.New(assistant.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
		RetryDelay: cfg.API.RetryDelay,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create assistant client: %w", err)
	}

	store := opts.Store
	if store == nil {
		store = identity.NewFileStore(cfg.Store.Path)
	}

	source := opts.Source
	if source == nil {
		source = speech.FFmpegSource{Binary: cfg.Audio.FFmpeg, Input: cfg.Audio.Input, Format: cfg.Audio.Format}
	}

	player := opts.Player
	if player == nil {
		if cfg.Audio.PlayerOn {
			player = speech.FFplayPlayer{Binary: cfg.Audio.Player}
		} else {
			player = speech.NopPlayer{}
		}
	}

	catalog := locale.Lookup(cfg.UI.Locale)
	s := &Session{
		catalog:  catalog,
		identity: identity.New(store),
		log:      chatservice.NewService(),
		client:   client,
		player:   player,
		format:   cfg.Audio.Format,
	}
	s.orchestrator = orchestrator.New(s.log, client, s.identity, catalog)
	s.capture = speech.NewCapture(source, speech.CaptureOptions{
		Format:             cfg.Audio.Format,
		Notify:             s.emit,
		UnavailableMessage: catalog.MicrophoneUnavailable,
		OnComplete:         s.submitClip,
	})

	return s, nil
}

func (s *Session) Catalog() locale.Catalog                  { return s.catalog }
func (s *Session) Identity() *identity.Identity             { return s.identity }
func (s *Session) Log() *chatservice.Service                { return s.log }
func (s *Session) Client() *assistant.Client                { return s.client }
func (s *Session) Orchestrator() *orchestrator.Orchestrator { return s.orchestrator }
func (s *Session) Capture() *speech.Capture                 { return s.capture }

// SetNotifier routes user-facing notices (microphone problems) to fn.
func (s *Session) SetNotifier(fn func(string)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

func (s *Session) emit(message string) {
	s.mu.RLock()
	fn := s.notify
	s.mu.RUnlock()
	if fn != nil {
		fn(message)
		return
	}
	log.Printf("[session] %s", message)
}

// SendText submits typed input. It is refused while recording so the
// finished clip never finds a text request in flight.
func (s *Session) SendText(ctx context.Context, text string) error {
	if s.capture.Recording() {
		return ErrRecordingActive
	}
	return s.orchestrator.SubmitText(ctx, text)
}

// StartRecording asks the capture controller for the microphone. It is
// refused while a reply is pending.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.orchestrator.Loading() {
		return orchestrator.ErrBusy
	}
	return s.capture.Start(ctx)
}

// StopRecording ends the recording. The clip reaches the orchestrator
// through the completion callback, so this blocks until the reply is in
// the log.
func (s *Session) StopRecording() error {
	_, _, err := s.capture.Stop()
	return err
}

// ToggleRecording starts or stops depending on the current state.
func (s *Session) ToggleRecording(ctx context.Context) error {
	if s.capture.Recording() {
		return s.StopRecording()
	}
	return s.StartRecording(ctx)
}

func (s *Session) submitClip(clip speechmodel.Clip) {
	err := s.orchestrator.SubmitVoice(context.Background(), clip)
	if err == nil {
		return
	}
	log.Printf("[session] voice submission dropped: %v", err)
	if errors.Is(err, orchestrator.ErrBusy) {
		s.emit(s.catalog.VoiceDropped)
	}
}

// SendAudioFile submits an existing WAV file as a voice message.
func (s *Session) SendAudioFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio file: %w", err)
	}
	info, err := speech.DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	format := speechmodel.Format{SampleRate: info.SampleRate, Channels: info.Channels, Encoding: speechmodel.EncodingPCM16}
	duration := format.Duration(len(info.Data))
	if info.BitsPerSample == 8 {
		duration = format.Duration(2 * len(info.Data))
	}
	clip := speechmodel.Clip{
		Data:        data,
		ContentType: speechmodel.ClipContentType,
		Filename:    speechmodel.ClipFilename,
		Format:      format,
		Duration:    duration,
	}
	return s.orchestrator.SubmitVoice(ctx, clip)
}

// PlayLatest plays the newest audio reference in the log. Failures are
// logged only.
func (s *Session) PlayLatest(ctx context.Context) bool {
	ref, ok := s.log.LatestAudio()
	if !ok {
		return false
	}
	speech.PlayAndLog(ctx, s.player, ref)
	return true
}

// Play plays an arbitrary reference, resolving relative paths first.
func (s *Session) Play(ctx context.Context, ref string) error {
	resolved := s.client.ResolveAudioURL(ref)
	if resolved == "" {
		return speech.ErrNoAudio
	}
	return s.player.Play(ctx, resolved)
}

// Close releases the microphone if a recording is still running. The
// partial recording is discarded.
func (s *Session) Close() error {
	s.capture.Cancel()
	return nil
}

// UserID returns the persisted user id, creating it on first use. Storage
// failures are logged and yield an empty id.
func (s *Session) UserID() string {
	id, err := s.identity.GetOrCreateUserID()
	if err != nil {
		log.Printf("[session] user id unavailable: %v", err)
	}
	return id
}

func (s *Session) UserEmail() (string, bool) { return s.identity.UserEmail() }

func (s *Session) SetUserEmail(email string) (bool, error) { return s.identity.SetUserEmail(email) }

func (s *Session) Messages() []chat.Message { return s.log.Messages() }

func (s *Session) Subscribe(fn func(chat.Message)) func() { return s.log.Subscribe(fn) }

func (s *Session) Loading() bool { return s.orchestrator.Loading() }

func (s *Session) OnLoadingChange(fn func(bool)) { s.orchestrator.OnLoadingChange(fn) }

func (s *Session) Recording() bool { return s.capture.Recording() }

func (s *Session) Elapsed() time.Duration { return s.capture.Elapsed() }
