package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// DefaultDiscordURL is the Discord API base URL.
const DefaultDiscordURL = "https://discord.com/api"

// Discord embed limits.
const (
	maxTitle       = 256
	maxDescription = 4096
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxFields      = 25
)

// ErrNoChannel is returned when a message is sent to an unconfigured channel.
var ErrNoChannel = errors.New("channel id or token not configured")

// StatusError is a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.Code)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.Code, e.Body)
}

// DiscordSink posts messages as webhook embeds.
type DiscordSink struct {
	baseURL string
	client  *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// DiscordOption configures a DiscordSink.
type DiscordOption func(*DiscordSink)

// WithBaseURL sets the API base URL (default DefaultDiscordURL).
func WithBaseURL(u string) DiscordOption {
	return func(s *DiscordSink) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRate limits requests to perSecond with the given burst. A
// non-positive perSecond disables limiting.
func WithRate(perSecond float64, burst int) DiscordOption {
	return func(s *DiscordSink) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPTimeout bounds one request when the context carries no earlier
// deadline.
func WithHTTPTimeout(d time.Duration) DiscordOption {
	return func(s *DiscordSink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDial replaces the client dialer.
func WithDial(dial func(addr string) (net.Conn, error)) DiscordOption {
	return func(s *DiscordSink) {
		s.client.Dial = dial
	}
}

// WithSinkLogger sets the sink logger.
func WithSinkLogger(l *slog.Logger) DiscordOption {
	return func(s *DiscordSink) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewDiscordSink returns a webhook sink limited to 5 requests per second.
func NewDiscordSink(opts ...DiscordOption) *DiscordSink {
	s := &DiscordSink{
		baseURL: DefaultDiscordURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			MaxIdleConnDuration: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Send posts msg to the channel's webhook. It does not retry.
func (s *DiscordSink) Send(ctx context.Context, ch Channel, msg Message) error {
	if !ch.Configured() {
		return ErrNoChannel
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(webhookPayload{Embeds: []embed{toEmbed(msg)}})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.webhookURL(ch))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}

	code := resp.StatusCode()
	if code < 200 || code >= 300 {
		return &StatusError{Code: code, Body: truncate(string(resp.Body()), 200)}
	}
	s.logger.Debug("webhook delivered", "channel", ch.ID, "status", code)
	return nil
}

func (s *DiscordSink) webhookURL(ch Channel) string {
	return s.baseURL + "/webhooks/" + url.PathEscape(ch.ID) + "/" + url.PathEscape(ch.Token)
}

func toEmbed(msg Message) embed {
	e := embed{
		Title:       truncate(msg.Title, maxTitle),
		Description: truncate(msg.Description, maxDescription),
		Color:       msg.Color,
	}
	if !msg.Timestamp.IsZero() {
		e.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}
	for i, f := range msg.Fields {
		if i == maxFields {
			break
		}
		e.Fields = append(e.Fields, embedField{
			Name:   truncate(f.Name, maxFieldName),
			Value:  truncate(f.Value, maxFieldValue),
			Inline: f.Inline,
		})
	}
	return e
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
