// Package runner executes try-it-out requests against documented endpoints.
// When the API rejects the caller's IP it regenerates the bearer token from
// saved client credentials and retries once.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/studiowebux/docportal/internal/executor"
	"github.com/studiowebux/docportal/internal/session"
	"github.com/studiowebux/docportal/internal/types"
)

// WhitelistHint points the user to the screen that fixes IP errors
const WhitelistHint = "add this IP address on the whitelist screen (docportal whitelist add <ip>)"

// TokenRegenerator mints a fresh API bearer token from saved credentials
type TokenRegenerator interface {
	RegenerateToken(ctx context.Context) (string, error)
}

// Recorder stores completed executions
type Recorder interface {
	Record(entry types.HistoryEntry) error
}

// IPError describes a request rejected because the caller's IP is not
// whitelisted
type IPError struct {
	Message  string `json:"message"`
	PublicIP string `json:"publicIp,omitempty"`
	Hint     string `json:"hint"`
}

// Outcome is the result of a try-it-out execution
type Outcome struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Data       any               `json:"data,omitempty"`
	Body       string            `json:"body"`
	DurationMs int64             `json:"durationMs"`
	URL        string            `json:"url"`
	Retried    bool              `json:"retried,omitempty"`
	Error      string            `json:"error,omitempty"`
	IPError    *IPError          `json:"ipError,omitempty"`
}

// Runner executes sessions
type Runner struct {
	Timeout     time.Duration
	// RetryPause is waited between token regeneration and the retry
	RetryPause  time.Duration
	Regenerator TokenRegenerator
	Session     *session.Manager
	Recorder    Recorder
	IPEchoURL   string

	group singleflight.Group
}

// Execute runs the session's request. The session itself is not modified;
// a regenerated token is applied to a copy.
func (r *Runner) Execute(ctx context.Context, s *Session) (*Outcome, error) {
	outcome, err := r.send(ctx, s)
	if err != nil {
		return nil, err
	}

	if isIPRejection(outcome) {
		outcome = r.recoverIPRejection(ctx, s, outcome)
	}

	r.record(s, outcome)
	return outcome, nil
}

func (r *Runner) send(ctx context.Context, s *Session) (*Outcome, error) {
	req := &executor.Request{
		Method:  s.Method,
		URL:     s.FinalURL(),
		Headers: s.Headers,
	}
	if s.HasBody() {
		req.Body = s.Body
	}

	result, err := executor.Execute(ctx, req, r.Timeout)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Status:     result.Status,
		StatusText: result.StatusText,
		Headers:    result.Headers,
		Body:       result.Body,
		DurationMs: result.Duration,
		URL:        req.URL,
		Error:      result.Error,
	}
	if outcome.Error == "" && isJSON(result.Headers) {
		var data any
		if err := json.Unmarshal([]byte(result.Body), &data); err == nil {
			outcome.Data = data
		}
	}
	return outcome, nil
}

// recoverIPRejection regenerates the token and retries once. Without saved
// credentials, or when regeneration fails, the rejection is reported as an
// IPError.
func (r *Runner) recoverIPRejection(ctx context.Context, s *Session, rejected *Outcome) *Outcome {
	message := rejectionMessage(rejected)

	if r.Regenerator == nil || !r.hasCredentials() {
		rejected.IPError = r.ipError(ctx, message)
		return rejected
	}

	v, err, _ := r.group.Do("regenerate", func() (any, error) {
		return r.Regenerator.RegenerateToken(ctx)
	})
	if err != nil {
		slog.Warn("token regeneration failed", "error", err)
		rejected.IPError = r.ipError(ctx, message)
		return rejected
	}
	token := v.(string)

	if r.Session != nil {
		if err := r.Session.SetAPIToken(token); err != nil {
			slog.Warn("failed to cache API token", "error", err)
		}
	}

	if r.RetryPause > 0 {
		select {
		case <-ctx.Done():
			rejected.Error = ctx.Err().Error()
			return rejected
		case <-time.After(r.RetryPause):
		}
	}

	retry := s.Clone()
	retry.SetBearer(token)

	outcome, err := r.send(ctx, retry)
	if err != nil {
		rejected.Error = err.Error()
		return rejected
	}
	outcome.Retried = true

	if isIPRejection(outcome) {
		outcome.IPError = r.ipError(ctx, rejectionMessage(outcome))
	}
	return outcome
}

func (r *Runner) hasCredentials() bool {
	if r.Session == nil {
		return true
	}
	_, ok, err := r.Session.LatestCredential()
	return err == nil && ok
}

func (r *Runner) ipError(ctx context.Context, message string) *IPError {
	return &IPError{
		Message:  message,
		PublicIP: r.publicIP(ctx),
		Hint:     WhitelistHint,
	}
}

func (r *Runner) publicIP(ctx context.Context) string {
	return PublicIP(ctx, r.IPEchoURL)
}

// PublicIP asks an IP echo service for the caller's address. The service may
// answer {"ip": "..."} or plain text. Failures yield "".
func PublicIP(ctx context.Context, echoURL string) string {
	if echoURL == "" {
		return ""
	}

	resp, err := resty.New().SetTimeout(5 * time.Second).R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(echoURL)
	if err != nil || resp.IsError() {
		slog.Debug("failed to look up public IP", "error", err)
		return ""
	}

	var echo struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(resp.Body(), &echo); err == nil && echo.IP != "" {
		return echo.IP
	}
	return strings.TrimSpace(string(resp.Body()))
}

func (r *Runner) record(s *Session, outcome *Outcome) {
	if r.Recorder == nil {
		return
	}

	entry := types.HistoryEntry{
		Timestamp:          time.Now().Format(time.RFC3339),
		EndpointID:         s.EndpointID,
		Environment:        s.Environment,
		Method:             s.Method,
		URL:                outcome.URL,
		Headers:            s.Headers,
		ResponseStatus:     outcome.Status,
		ResponseStatusText: outcome.StatusText,
		ResponseHeaders:    outcome.Headers,
		ResponseBody:       outcome.Body,
		Duration:           outcome.DurationMs,
		Retried:            outcome.Retried,
		Error:              outcome.Error,
	}
	if s.HasBody() {
		entry.Body = s.Body
	}
	if outcome.IPError != nil && entry.Error == "" {
		entry.Error = outcome.IPError.Message
	}

	if err := r.Recorder.Record(entry); err != nil {
		slog.Warn("failed to record history", "error", err)
	}
}

// isIPRejection reports whether the API refused the request because of the
// caller's IP address
func isIPRejection(o *Outcome) bool {
	if o == nil || (o.Status != 401 && o.Status != 403) {
		return false
	}
	text := strings.ToLower(rejectionMessage(o))
	return strings.Contains(text, "whitelist") || strings.Contains(text, "not authorized ip")
}

// rejectionMessage returns the message/error member of a JSON body, or the
// raw body
func rejectionMessage(o *Outcome) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(o.Body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if body := strings.TrimSpace(o.Body); body != "" {
		return body
	}
	return fmt.Sprintf("%d %s", o.Status, o.StatusText)
}

func isJSON(headers map[string]string) bool {
	for name, value := range headers {
		if !strings.EqualFold(name, "Content-Type") {
			continue
		}
		mediaType, _, err := mime.ParseMediaType(value)
		if err != nil {
			return false
		}
		return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
	}
	return false
}

// Pretty indents a JSON body. Anything else is returned unchanged.
func Pretty(body string) string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(body), "", "  "); err != nil {
		return body
	}
	return out.String()
}
