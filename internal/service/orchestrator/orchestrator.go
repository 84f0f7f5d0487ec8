// Package orchestrator turns user submissions into service calls and log
// entries.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a request is already in flight")
)

// Assistant is the remote service as seen by the orchestrator.
type Assistant interface {
	Chat(ctx context.Context, req chat.TextRequest) (chat.Reply, error)
	Voice(ctx context.Context, clip speechmodel.Clip, userID, userEmail string) (chat.Reply, error)
	ResolveAudioURL(ref string) string
}

// IdentityProvider supplies the user id and optional email sent with each
// request.
type IdentityProvider interface {
	GetOrCreateUserID() (string, error)
	UserEmail() (string, bool)
}

// Log is the conversation log the orchestrator appends to.
type Log interface {
	Append(chat.Message) chat.Message
}

// Orchestrator owns the loading flag and allows one request at a time.
type Orchestrator struct {
	log       Log
	assistant Assistant
	identity  IdentityProvider
	catalog   locale.Catalog
	now       func() time.Time

	mu        sync.Mutex
	loading   bool
	listeners []func(bool)
}

// New wires an orchestrator.
func New(conversation Log, assistant Assistant, identity IdentityProvider, catalog locale.Catalog) *Orchestrator {
	return &Orchestrator{
		log:       conversation,
		assistant: assistant,
		identity:  identity,
		catalog:   catalog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Loading reports whether a request is in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// OnLoadingChange registers fn to be called on every flag transition.
func (o *Orchestrator) OnLoadingChange(fn func(bool)) {
	o.mu.Lock()
	o.listeners = append(o.listeners, fn)
	o.mu.Unlock()
}

// SubmitText sends a typed message. Blank input and submissions made while
// another request is running are rejected without touching the log. Service
// failures end up in the log as a localized apology and are not returned.
func (o *Orchestrator) SubmitText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if !o.acquire() {
		return ErrBusy
	}
	defer o.release()

	o.log.Append(chat.Message{
		Text:      text,
		Sender:    chat.SenderUser,
		Timestamp: o.now(),
	})

	userID, email := o.who()
	reply, err := o.assistant.Chat(ctx, chat.TextRequest{Message: text, UserID: userID, UserEmail: email})
	if err != nil {
		log.Printf("[orchestrator] chat request failed: %v", err)
		o.appendFailure(o.catalog.TextFailure)
		return nil
	}

	o.appendReply(reply)
	return nil
}

// SubmitVoice uploads a finished recording. A placeholder entry stands in
// for the user's words since the transcription is not returned separately.
func (o *Orchestrator) SubmitVoice(ctx context.Context, clip speechmodel.Clip) error {
	if !o.acquire() {
		return ErrBusy
	}
	defer o.release()

	o.log.Append(chat.Message{
		Text:      o.catalog.VoicePlaceholder,
		Sender:    chat.SenderUser,
		Timestamp: o.now(),
		IsVoice:   true,
	})

	userID, email := o.who()
	reply, err := o.assistant.Voice(ctx, clip, userID, email)
	if err != nil {
		log.Printf("[orchestrator] voice request failed: %v", err)
		o.appendFailure(o.catalog.VoiceFailure)
		return nil
	}

	o.appendReply(reply)
	return nil
}

func (o *Orchestrator) who() (string, string) {
	userID, err := o.identity.GetOrCreateUserID()
	if err != nil {
		// sent with an empty id
		log.Printf("[orchestrator] user id unavailable: %v", err)
	}
	email, _ := o.identity.UserEmail()
	return userID, email
}

func (o *Orchestrator) appendReply(reply chat.Reply) {
	o.log.Append(chat.Message{
		Text:           reply.Response,
		Sender:         chat.SenderAssistant,
		Timestamp:      o.now(),
		AudioURL:       o.assistant.ResolveAudioURL(reply.AudioURL),
		ConversationID: reply.ConversationID,
	})
}

func (o *Orchestrator) appendFailure(text string) {
	o.log.Append(chat.Message{
		Text:      text,
		Sender:    chat.SenderAssistant,
		Timestamp: o.now(),
		IsError:   true,
	})
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	if o.loading {
		o.mu.Unlock()
		return false
	}
	o.loading = true
	listeners := append(([]func(bool))(nil), o.listeners...)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(true)
	}
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.loading = false
	listeners := append(([]func(bool))(nil), o.listeners...)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(false)
	}
}
