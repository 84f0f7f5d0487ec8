package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
)

// Listener is notified after every append.
type Listener func(chat.Message)

// Service is the append-only conversation log of the active session.
type Service struct {
	mu        sync.RWMutex
	messages  []chat.Message
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

// NewService creates an empty log.
func NewService() *Service {
	return &Service{
		messages:  make([]chat.Message, 0, 16),
		listeners: make(map[int]Listener),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Append adds message to the end of the log and notifies listeners. ID and
// Timestamp are filled in when unset; the stored copy is returned.
func (s *Service) Append(message chat.Message) chat.Message {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = s.now()
	}

	s.mu.Lock()
	s.messages = append(s.messages, message)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(message)
	}
	return message
}

// Messages returns the log in append order.
func (s *Service) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len returns the number of entries.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the newest entry.
func (s *Service) Last() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return chat.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LatestAudio returns the audio reference of the newest message carrying one.
func (s *Service) LatestAudio() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].HasAudio() {
			return s.messages[i].AudioURL, true
		}
	}
	return "", false
}

// Subscribe registers l for future appends. The returned func removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
