package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/assistant"
	chatservice "github.com/numan-developer-2/Customer-Support-Agent/internal/service/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/identity"
)

type fakeAssistant struct {
	mu        sync.Mutex
	reply     chat.Reply
	err       error
	block     chan struct{}
	entered   chan struct{}
	chatReqs  []chat.TextRequest
	voiceReqs []voiceCall
}

type voiceCall struct {
	clip   speechmodel.Clip
	userID string
	email  string
}

func (f *fakeAssistant) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAssistant) Chat(_ context.Context, req chat.TextRequest) (chat.Reply, error) {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	f.mu.Unlock()
	f.wait()
	return f.reply, f.err
}

func (f *fakeAssistant) Voice(_ context.Context, clip speechmodel.Clip, userID, email string) (chat.Reply, error) {
	f.mu.Lock()
	f.voiceReqs = append(f.voiceReqs, voiceCall{clip: clip, userID: userID, email: email})
	f.mu.Unlock()
	f.wait()
	return f.reply, f.err
}

func (f *fakeAssistant) ResolveAudioURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	return "http://localhost:8000" + ref
}

func setup(fake *fakeAssistant) (*Orchestrator, *chatservice.Service, *identity.Identity) {
	conversation := chatservice.NewService()
	id := identity.New(identity.NewMemoryStore())
	return New(conversation, fake, id, locale.Default()), conversation, id
}

func TestSubmitTextEmptyIsIgnored(t *testing.T) {
	fake := &fakeAssistant{}
	o, conversation, _ := setup(fake)

	for _, text := range []string{"", "   ", "\n\t"} {
		if err := o.SubmitText(context.Background(), text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("SubmitText(%q) expected ErrEmptyMessage, got %v", text, err)
		}
	}
	if conversation.Len() != 0 {
		t.Fatalf("log must stay empty, got %d entries", conversation.Len())
	}
	if len(fake.chatReqs) != 0 {
		t.Fatal("no request should be sent")
	}
	if o.Loading() {
		t.Fatal("loading must stay false")
	}
}

func TestSubmitTextSuccess(t *testing.T) {
	fake := &fakeAssistant{reply: chat.Reply{Response: "Hi there", AudioURL: "/audio/xyz.wav", ConversationID: "c9"}}
	o, conversation, id := setup(fake)
	if ok, _ := id.SetUserEmail("a@b.co"); !ok {
		t.Fatal("expected email to be stored")
	}

	if err := o.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatalf("SubmitText err: %v", err)
	}

	msgs := conversation.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(msgs))
	}
	if msgs[0].Sender != chat.SenderUser || msgs[0].Text != "hello" || msgs[0].IsVoice {
		t.Fatalf("unexpected user entry: %+v", msgs[0])
	}
	reply := msgs[1]
	if reply.Sender != chat.SenderAssistant || reply.Text != "Hi there" || reply.IsError {
		t.Fatalf("unexpected assistant entry: %+v", reply)
	}
	if reply.AudioURL != "http://localhost:8000/audio/xyz.wav" || reply.ConversationID != "c9" {
		t.Fatalf("unexpected audio/conversation: %+v", reply)
	}

	req := fake.chatReqs[0]
	userID, _ := id.GetOrCreateUserID()
	if req.Message != "hello" || req.UserID != userID || req.UserEmail != "a@b.co" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if o.Loading() {
		t.Fatal("loading must be released")
	}
}

func TestSubmitTextWithoutAudio(t *testing.T) {
	fake := &fakeAssistant{reply: chat.Reply{Response: "plain"}}
	o, conversation, _ := setup(fake)

	if err := o.SubmitText(context.Background(), "q"); err != nil {
		t.Fatalf("SubmitText err: %v", err)
	}
	last, _ := conversation.Last()
	if last.HasAudio() {
		t.Fatalf("reply without audio_url must not carry audio: %+v", last)
	}
}

func TestSubmitTextFailureAppendsApology(t *testing.T) {
	fake := &fakeAssistant{err: &assistant.APIError{Op: "chat", StatusCode: 500}}
	o, conversation, _ := setup(fake)

	if err := o.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatalf("failures must not escape, got %v", err)
	}

	msgs := conversation.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(msgs))
	}
	if msgs[0].Text != "hello" || msgs[0].Sender != chat.SenderUser {
		t.Fatalf("unexpected user entry: %+v", msgs[0])
	}
	if !msgs[1].IsError || msgs[1].Text != locale.Default().TextFailure {
		t.Fatalf("unexpected failure entry: %+v", msgs[1])
	}
	if msgs[1].Class() != chat.ClassAssistantError {
		t.Fatalf("unexpected class: %s", msgs[1].Class())
	}
	if o.Loading() {
		t.Fatal("loading must be released after failure")
	}
}

func TestSubmitVoiceSuccess(t *testing.T) {
	fake := &fakeAssistant{reply: chat.Reply{Response: "नमस्ते", AudioURL: "/a.wav", ConversationID: "c1"}}
	o, conversation, _ := setup(fake)

	clip := speechmodel.Clip{Data: []byte("RIFF"), ContentType: "audio/wav", Filename: "audio.wav"}
	if err := o.SubmitVoice(context.Background(), clip); err != nil {
		t.Fatalf("SubmitVoice err: %v", err)
	}

	msgs := conversation.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(msgs))
	}
	if !msgs[0].IsVoice || msgs[0].Text != locale.Default().VoicePlaceholder {
		t.Fatalf("unexpected placeholder: %+v", msgs[0])
	}
	if msgs[1].Text != "नमस्ते" || msgs[1].AudioURL != "http://localhost:8000/a.wav" || msgs[1].ConversationID != "c1" {
		t.Fatalf("unexpected reply entry: %+v", msgs[1])
	}
	call := fake.voiceReqs[0]
	if call.email != "" {
		t.Fatalf("email must be empty when unset, got %q", call.email)
	}
	if string(call.clip.Data) != "RIFF" {
		t.Fatal("clip not forwarded")
	}
}

func TestSubmitVoiceFailure(t *testing.T) {
	fake := &fakeAssistant{err: &assistant.TransportError{Op: "voice", Err: errors.New("refused")}}
	o, conversation, _ := setup(fake)

	if err := o.SubmitVoice(context.Background(), speechmodel.Clip{}); err != nil {
		t.Fatalf("failures must not escape, got %v", err)
	}
	last, _ := conversation.Last()
	if !last.IsError || last.Text != locale.Default().VoiceFailure {
		t.Fatalf("unexpected failure entry: %+v", last)
	}
}

func TestSubmitWhileLoadingIsRejected(t *testing.T) {
	fake := &fakeAssistant{
		reply:   chat.Reply{Response: "done"},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	o, conversation, _ := setup(fake)

	done := make(chan error, 1)
	go func() { done <- o.SubmitText(context.Background(), "first") }()

	select {
	case <-fake.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the service")
	}
	if !o.Loading() {
		t.Fatal("loading must be true while in flight")
	}

	if err := o.SubmitText(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := o.SubmitVoice(context.Background(), speechmodel.Clip{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for voice, got %v", err)
	}
	if conversation.Len() != 1 {
		t.Fatalf("rejected submissions must not touch the log, got %d entries", conversation.Len())
	}

	close(fake.block)
	if err := <-done; err != nil {
		t.Fatalf("first submission err: %v", err)
	}
	if conversation.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", conversation.Len())
	}
}

func TestLoadingListener(t *testing.T) {
	fake := &fakeAssistant{err: errors.New("boom")}
	o, _, _ := setup(fake)

	var states []bool
	o.OnLoadingChange(func(v bool) { states = append(states, v) })

	_ = o.SubmitText(context.Background(), "a")
	_ = o.SubmitText(context.Background(), " ")

	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("unexpected loading transitions: %v", states)
	}
}
