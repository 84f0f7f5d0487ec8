package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/devassistant"
)

type fakeVoiceService struct {
	transcribeErr error
	audio         []byte
	userID        string
	userEmail     string
	message       string
	audioPath     string
}

func (f *fakeVoiceService) Transcribe(audio []byte) (string, error) {
	f.audio = audio
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return "transcript", nil
}

func (f *fakeVoiceService) Respond(_ context.Context, userID, userEmail, message string) (chat.Reply, error) {
	f.userID, f.userEmail, f.message = userID, userEmail, message
	return chat.Reply{Response: "ok", AudioURL: "/api/audio/c-1", ConversationID: "c-1"}, nil
}

func (f *fakeVoiceService) AudioPath(conversationID string) (string, error) {
	if f.audioPath == "" {
		return "", devassistant.ErrAudioNotFound
	}
	return f.audioPath, nil
}

func newRouter(svc VoiceService) *chi.Mux {
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
}

func voiceRequest(t *testing.T, target, filename string, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write([]byte("RIFF-audio")); err != nil {
		t.Fatalf("write audio err: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField err: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestVoiceRespondsWithTranscriptReply(t *testing.T) {
	fake := &fakeVoiceService{}
	r := newRouter(fake)

	req := voiceRequest(t, "/voice", "audio.wav", map[string]string{"user_id": "user_123456789", "user_email": "a@b.co"})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	if string(fake.audio) != "RIFF-audio" {
		t.Fatalf("audio not forwarded: %q", fake.audio)
	}
	if fake.userID != "user_123456789" || fake.userEmail != "a@b.co" || fake.message != "transcript" {
		t.Fatalf("unexpected respond args: %+v", fake)
	}

	var reply chat.Reply
	if err := json.Unmarshal(rr.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.ConversationID != "c-1" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestVoiceAcceptsIdentityInQuery(t *testing.T) {
	fake := &fakeVoiceService{}
	r := newRouter(fake)

	req := voiceRequest(t, "/voice?user_id=from-query", "audio.wav", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if fake.userID != "from-query" {
		t.Fatalf("expected query user id, got %q", fake.userID)
	}
}

func TestVoiceErrors(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		err      error
		status   int
	}{
		{name: "unintelligible", filename: "audio.wav", err: devassistant.ErrUnintelligible, status: http.StatusBadRequest},
		{name: "unsupported container", filename: "audio.mp3", status: http.StatusUnsupportedMediaType},
		{name: "internal", filename: "audio.wav", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&fakeVoiceService{transcribeErr: tc.err})
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, voiceRequest(t, "/voice", tc.filename, nil))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestVoiceMissingAudio(t *testing.T) {
	r := newRouter(&fakeVoiceService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("user_id", "u")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/voice", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAudioServesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	r := newRouter(&fakeVoiceService{audioPath: path})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audio/c-1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rr.Body.String() != "RIFFdata" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestAudioNotFound(t *testing.T) {
	r := newRouter(&fakeVoiceService{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audio/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestInferAudioFormat(t *testing.T) {
	cases := map[string]string{
		"audio.wav": "wav",
		"AUDIO.WAV": "wav",
		"blob":      "wav",
		"clip.webm": "webm",
		"voice.ogg": "ogg",
	}
	for name, want := range cases {
		if got := inferAudioFormat(name); got != want {
			t.Fatalf("inferAudioFormat(%q) = %q, want %q", name, got, want)
		}
	}
}
