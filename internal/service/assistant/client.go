// Package assistant talks to the remote customer-support service.
package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultRetryDelay = time.Second
	maxResponseBytes  = 4 << 20
	maxErrorBodyBytes = 512
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds every single attempt.
	Timeout time.Duration
	// MaxRetries is how many extra attempts a request gets after a
	// transport failure. Non-2xx answers are never retried.
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Client is the HTTP client of the support service.
type Client struct {
	http       *http.Client
	base       string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// New validates the base url and creates a client.
func New(opts Options) (*Client, error) {
	base, err := normalizeServerURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: defaultTransport()}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		http:       httpClient,
		base:       base,
		timeout:    timeout,
		maxRetries: retries,
		retryDelay: retryDelay,
	}, nil
}

func defaultTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.IdleConnTimeout = 90 * time.Second
	t.TLSHandshakeTimeout = 10 * time.Second
	return t
}

// normalizeServerURL reduces server to scheme://host, adding http:// when no
// scheme is given.
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, server)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// BaseURL returns the origin every endpoint and audio path is resolved
// against.
func (c *Client) BaseURL() string {
	return c.base
}

// Chat sends a typed message.
func (c *Client) Chat(ctx context.Context, req chat.TextRequest) (chat.Reply, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	data, err := c.do(ctx, "chat", http.MethodPost, endpointChat, "application/json", body)
	if err != nil {
		return chat.Reply{}, err
	}
	return c.decodeReply("chat", data)
}

// Voice uploads a recorded clip. Email is omitted when empty.
func (c *Client) Voice(ctx context.Context, clip speechmodel.Clip, userID, userEmail string) (chat.Reply, error) {
	body, contentType, err := voiceForm(clip, userID, userEmail)
	if err != nil {
		return chat.Reply{}, err
	}

	data, err := c.do(ctx, "voice", http.MethodPost, endpointVoice, contentType, body)
	if err != nil {
		return chat.Reply{}, err
	}
	return c.decodeReply("voice", data)
}

func voiceForm(clip speechmodel.Clip, userID, userEmail string) ([]byte, string, error) {
	filename := clip.Filename
	if filename == "" {
		filename = speechmodel.ClipFilename
	}
	contentType := clip.ContentType
	if contentType == "" {
		contentType = speechmodel.ClipContentType
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, "", fmt.Errorf("write audio part: %w", err)
	}

	if userID != "" {
		if err := writer.WriteField("user_id", userID); err != nil {
			return nil, "", fmt.Errorf("write user_id: %w", err)
		}
	}
	if userEmail != "" {
		if err := writer.WriteField("user_email", userEmail); err != nil {
			return nil, "", fmt.Errorf("write user_email: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

// replyEnvelope tells a missing response field apart from an empty one.
type replyEnvelope struct {
	Response       *string `json:"response"`
	AudioURL       string  `json:"audio_url"`
	ConversationID string  `json:"conversation_id"`
}

func (c *Client) decodeReply(op string, data []byte) (chat.Reply, error) {
	var env replyEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return chat.Reply{}, fmt.Errorf("%w: decode %s reply: %v", ErrMalformedResponse, op, err)
	}
	if env.Response == nil {
		return chat.Reply{}, fmt.Errorf("%w: %s reply has no response field", ErrMalformedResponse, op)
	}
	return chat.Reply{
		Response:       *env.Response,
		AudioURL:       env.AudioURL,
		ConversationID: env.ConversationID,
	}, nil
}

// Conversations lists the exchanges the service stored for a user.
func (c *Client) Conversations(ctx context.Context, userID, userEmail string, limit int) ([]chat.ConversationRecord, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	if userEmail != "" {
		query.Set("user_email", userEmail)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	data, err := c.do(ctx, "conversations", http.MethodGet, endpointConversations+"?"+query.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	var list chat.ConversationList
	if err := sonic.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: decode conversations: %v", ErrMalformedResponse, err)
	}
	return list.Conversations, nil
}

// Health reports the service status.
func (c *Client) Health(ctx context.Context) (chat.HealthStatus, error) {
	data, err := c.do(ctx, "health", http.MethodGet, endpointHealth, "", nil)
	if err != nil {
		return chat.HealthStatus{}, err
	}

	var status chat.HealthStatus
	if err := sonic.Unmarshal(data, &status); err != nil {
		return chat.HealthStatus{}, fmt.Errorf("%w: decode health: %v", ErrMalformedResponse, err)
	}
	return status, nil
}

// ResolveAudioURL turns an audio reference from a reply into something
// playable. Relative paths are joined to the base origin, absolute URLs are
// kept and an empty reference stays empty.
func (c *Client) ResolveAudioURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if u, err := url.Parse(ref); err == nil && u.IsAbs() && u.Host != "" {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		scheme := c.base[:strings.Index(c.base, "://")]
		return scheme + ":" + ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.base + ref
}

// do runs one request with the per-attempt timeout. GETs are retried on any
// transport error; other methods only when the request never left the
// client, so a slow POST is not stored twice.
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body []byte) ([]byte, error) {
	target := c.base + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryDelay
			log.Printf("[assistant] retrying %s in %s after: %v", op, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, &TransportError{Op: op, URL: target, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		data, err := c.attempt(ctx, op, method, target, contentType, body)
		if err == nil {
			return data, nil
		}
		if !IsTransport(err) || ctx.Err() != nil {
			return nil, err
		}
		if method != http.MethodGet && !notSent(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, op, method, target, contentType string, body []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBodyBytes {
			text = text[:maxErrorBodyBytes]
		}
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: text}
	}
	return data, nil
}
