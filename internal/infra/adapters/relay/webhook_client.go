package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agent-promosi/internal/config"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/adapter"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Relay = (*WebhookClient)(nil)

const (
	maxBodyBytes  = 1 << 20
	maxErrorRunes = 2000
)

// Texts supplies user-facing messages; *i18n.Translator satisfies it.
type Texts interface {
	T(key string, args ...interface{}) string
}

// WebhookClient forwards chat text to one workflow webhook and normalizes whatever comes back.
// The endpoint is fixed at construction and never mutated.
type WebhookClient struct {
	url      string
	timeout  time.Duration
	priority []string
	texts    Texts
	client   *http.Client
	log      *zerolog.Logger
	dev      bool
}

type Option func(*WebhookClient)

// WithHTTPClient replaces the default transport. The relay timeout still applies per call.
func WithHTTPClient(c *http.Client) Option {
	return func(w *WebhookClient) { w.client = c }
}

// WithDev disables message redaction in logs.
func WithDev(dev bool) Option {
	return func(w *WebhookClient) { w.dev = dev }
}

func NewWebhookClient(cfg config.RelayConfig, texts Texts, logger *zerolog.Logger, opts ...Option) *WebhookClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	priority := cfg.FieldPriority
	if len(priority) == 0 {
		priority = config.DefaultFieldPriority
	}
	if logger == nil {
		logger = logging.Nop()
	}
	w := &WebhookClient{
		url:      strings.TrimSpace(cfg.WebhookURL),
		timeout:  timeout,
		priority: append([]string(nil), priority...),
		texts:    texts,
		client:   &http.Client{},
		log:      logger,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Configured reports whether a webhook URL was supplied.
func (w *WebhookClient) Configured() bool { return w.url != "" }

// Send posts {"message": message} once and always returns a displayable result.
func (w *WebhookClient) Send(ctx context.Context, message string) model.RelayResult {
	log := logging.With(ctx, w.log)
	if w.url == "" {
		metrics.ObserveRelay("not_configured", 0)
		return model.RelayResult{OK: false, Text: w.texts.T("relay.not_configured")}
	}

	start := time.Now()
	res, outcome := w.send(ctx, message)
	elapsed := time.Since(start)
	metrics.ObserveRelay(outcome, elapsed.Milliseconds())

	ev := log.Debug()
	if !res.OK {
		ev = log.Warn()
	}
	ev.Str("outcome", outcome).
		Str("message", logging.Redact(message, w.dev)).
		Dur("elapsed", elapsed).
		Msg("relay call finished")
	return res
}

func (w *WebhookClient) send(ctx context.Context, message string) (model.RelayResult, string) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	payload, _ := json.Marshal(struct {
		Message string `json:"message"`
	}{Message: message})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return model.RelayResult{OK: false, Text: w.texts.T("relay.unreachable")}, "unreachable"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := w.client.Do(req)
	if err != nil {
		return w.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return w.transportFailure(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := w.texts.T("relay.http_error", resp.StatusCode, errorSnippet(body, maxErrorRunes))
		return model.RelayResult{OK: false, Text: text}, "http_error"
	}

	reply, data := DecodeReply(body, w.priority)
	if _, isNull := reply.(NullReply); isNull {
		return model.RelayResult{OK: false, Text: w.texts.T("relay.unreachable")}, "invalid_body"
	}
	text := reply.Display()
	if strings.TrimSpace(text) == "" {
		text = w.texts.T("relay.empty_reply")
	}
	return model.RelayResult{OK: true, Text: text, Data: data}, "ok"
}

func (w *WebhookClient) transportFailure(ctx context.Context, err error) (model.RelayResult, string) {
	if isTimeout(ctx, err) {
		return model.RelayResult{OK: false, Text: w.texts.T("relay.timeout", int(w.timeout.Seconds()))}, "timeout"
	}
	return model.RelayResult{OK: false, Text: w.texts.T("relay.unreachable")}, "unreachable"
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
