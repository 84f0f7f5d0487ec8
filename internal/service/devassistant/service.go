// Package devassistant is an in-memory stand-in for the support service,
// used to develop and demo the client without the hosted backend.
package devassistant

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/analysis/mood"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/speech"
)

const (
	historyContext      = 5
	defaultHistoryLimit = 20
	silenceThreshold    = 200
	toneDuration        = 600 * time.Millisecond
)

var (
	ErrEmptyMessage     = errors.New("message is required")
	ErrUnintelligible   = errors.New("could not understand the audio")
	ErrAudioNotFound    = errors.New("audio file not found")
	ErrInvalidReference = errors.New("invalid conversation id")
)

// Service answers messages with canned replies and keeps every exchange in
// memory.
type Service struct {
	mu       sync.RWMutex
	records  []chat.ConversationRecord
	audioDir string
	now      func() time.Time
}

// NewService creates a service that writes reply audio under audioDir.
func NewService(audioDir string) (*Service, error) {
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Service{audioDir: audioDir, now: time.Now}, nil
}

// Respond stores the exchange and returns the reply with its audio route.
func (s *Service) Respond(ctx context.Context, userID, userEmail, message string) (chat.Reply, error) {
	if strings.TrimSpace(message) == "" {
		return chat.Reply{}, ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return chat.Reply{}, err
	}

	history := s.Conversations(userID, userEmail, historyContext)
	decision := mood.Analyze(message)
	answer := compose(message, userEmail, len(history), decision)
	log.Printf("[devassistant] user=%s mood=%s intensity=%d", userID, decision.Mood, decision.Intensity)

	id := uuid.NewString()
	audioPath, err := s.writeTone(id, toneFrequency(decision))
	if err != nil {
		// the text reply is still useful without audio
		log.Printf("[devassistant] write audio for %s: %v", id, err)
		audioPath = ""
	}

	record := chat.ConversationRecord{
		ID:          id,
		UserID:      userID,
		UserEmail:   userEmail,
		UserMessage: message,
		AIResponse:  answer,
		Timestamp:   s.now().UTC().Format(time.RFC3339Nano),
		AudioPath:   audioPath,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	reply := chat.Reply{Response: answer, ConversationID: id}
	if audioPath != "" {
		reply.AudioURL = "/api/audio/" + id
	}
	return reply, nil
}

// Transcribe stands in for speech recognition: it validates the WAV upload
// and describes it.
func (s *Service) Transcribe(audio []byte) (string, error) {
	info, err := speech.DecodeWAV(audio)
	if err != nil {
		return "", err
	}
	pcm, err := info.PCM16()
	if err != nil {
		return "", err
	}

	if peak(pcm) < silenceThreshold {
		return "", ErrUnintelligible
	}

	format := speechmodel.Format{SampleRate: info.SampleRate, Channels: info.Channels, Encoding: speechmodel.EncodingPCM16}
	return fmt.Sprintf("[voice message, %.1fs]", format.Duration(len(pcm)).Seconds()), nil
}

// Conversations lists stored exchanges newest first. user_id takes
// precedence over email; with neither, everything is listed.
func (s *Service) Conversations(userID, userEmail string, limit int) []chat.ConversationRecord {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]chat.ConversationRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(matched) < limit; i-- {
		r := s.records[i]
		switch {
		case userID != "" && r.UserID != userID:
			continue
		case userID == "" && userEmail != "" && r.UserEmail != userEmail:
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// AudioPath returns the reply audio file stored for conversationID.
func (s *Service) AudioPath(conversationID string) (string, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return "", ErrInvalidReference
	}

	path := s.tonePath(conversationID)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrAudioNotFound
		}
		return "", err
	}
	return path, nil
}

// Health reports the state of the stand-in. There is no database; the
// audio directory plays that role.
func (s *Service) Health() chat.HealthStatus {
	status := chat.HealthStatus{Status: "healthy", Database: "memory", Timestamp: s.now().UTC().Format(time.RFC3339)}
	if _, err := os.Stat(s.audioDir); err != nil {
		status.Status = "degraded"
		status.Database = "audio dir unavailable"
	}
	return status
}

// Stats returns the number of stored exchanges and distinct users.
func (s *Service) Stats() (conversations, users int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.records {
		seen[r.UserID] = struct{}{}
	}
	return len(s.records), len(seen)
}

func (s *Service) tonePath(id string) string {
	return filepath.Join(s.audioDir, "response_"+id+".wav")
}

func (s *Service) writeTone(id string, freq float64) (string, error) {
	format := speechmodel.DefaultFormat()
	wav, err := speech.EncodeWAV(tone(format, freq, toneDuration), format)
	if err != nil {
		return "", err
	}
	path := s.tonePath(id)
	if err := os.WriteFile(path, wav, 0644); err != nil {
		return "", err
	}
	return path, nil
}

var keywordReplies = []struct {
	keywords []string
	reply    string
}{
	{[]string{"order", "ऑर्डर", "delivery", "डिलीवरी"}, "I can help with your order. Please share the order number and I will check its status."},
	{[]string{"refund", "रिफंड", "return", "वापसी"}, "Refunds are processed within 5-7 business days after the return is received."},
	{[]string{"password", "पासवर्ड", "login", "लॉगिन"}, "You can reset your password from the sign-in page using the \"Forgot password\" link."},
}

var moodOpeners = map[mood.Label]string{
	mood.Frustrated: "I'm sorry for the trouble. ",
	mood.Urgent:     "I understand this is urgent. ",
	mood.Confused:   "Let me help you with that. ",
	mood.Satisfied:  "Glad to hear that! ",
}

func compose(message, email string, previous int, decision mood.Decision) string {
	lower := strings.ToLower(message)

	var b strings.Builder
	if previous == 0 {
		b.WriteString("Hello! ")
	}
	b.WriteString(moodOpeners[decision.Mood])

	answered := false
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				b.WriteString(kr.reply)
				answered = true
				break
			}
		}
		if answered {
			break
		}
	}
	if !answered {
		fmt.Fprintf(&b, "Thanks for your message: %q. A support agent will look into it.", strings.TrimSpace(message))
	}

	if email != "" {
		fmt.Fprintf(&b, " We will also follow up at %s.", email)
	}
	return b.String()
}

// toneFrequency picks a calmer pitch the more upset the customer is.
func toneFrequency(decision mood.Decision) float64 {
	switch decision.Mood {
	case mood.Frustrated:
		return 440 - 20*float64(decision.Intensity)
	case mood.Satisfied:
		return 523.25
	default:
		return 440
	}
}

// tone renders a sine wave as 16-bit little-endian PCM.
func tone(format speechmodel.Format, freq float64, d time.Duration) []byte {
	frames := int(d.Seconds() * float64(format.SampleRate))
	out := make([]byte, 0, frames*format.Channels*2)
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(2*math.Pi*freq*float64(i)/float64(format.SampleRate)) * 8000)
		for c := 0; c < format.Channels; c++ {
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
	}
	return out
}

func peak(pcm []byte) int {
	top := 0
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
		if v < 0 {
			v = -v
		}
		if v > top {
			top = v
		}
	}
	return top
}
