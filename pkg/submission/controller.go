package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultEndpointPath is the backend route that creates issues.
const DefaultEndpointPath = "/api/create_jira"

// DefaultBaseURL is used when no base URL or endpoint option is supplied.
const DefaultBaseURL = "http://127.0.0.1:8000"

// State is the controller's in-flight condition.
type State int

const (
	// StateIdle means the control is enabled and a submission may start.
	StateIdle State = iota
	// StateSubmitting means a request is in flight and the control is disabled.
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Display receives the status text shown to the user.
type Display interface {
	SetText(text string)
}

// Control is the submit trigger the controller disables while a request is in
// flight.
type Control interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// HTTPClient is the transport seam; *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient overrides the transport used to reach the backend.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Controller) {
		if client != nil {
			c.client = client
		}
	}
}

// WithBaseURL points the controller at a backend origin; DefaultEndpointPath
// is appended.
func WithBaseURL(base string) Option {
	return func(c *Controller) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.endpoint = strings.TrimSuffix(base, "/") + DefaultEndpointPath
		}
	}
}

// WithEndpoint sets the full endpoint URL, overriding WithBaseURL.
func WithEndpoint(endpoint string) Option {
	return func(c *Controller) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLogger attaches a logger. The controller stays silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller orchestrates submissions against the issue endpoint.
type Controller struct {
	mu    sync.Mutex
	state State

	display  Display
	control  Control
	client   HTTPClient
	endpoint string
	logger   *zap.Logger
}

// NewController binds a controller to its display and submit control. The
// control is put into its idle presentation immediately.
func NewController(display Display, control Control, options ...Option) (*Controller, error) {
	if display == nil {
		return nil, ErrNilDisplay
	}
	if control == nil {
		return nil, ErrNilControl
	}

	c := &Controller{
		display:  display,
		control:  control,
		client:   http.DefaultClient,
		endpoint: DefaultBaseURL + DefaultEndpointPath,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	c.control.SetEnabled(true)
	c.control.SetLabel(IdleLabel)
	return c, nil
}

// Endpoint reports the URL submissions are posted to.
func (c *Controller) Endpoint() string {
	return c.endpoint
}

// State reports whether a submission is currently in flight.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one submission to completion and returns its result. The only
// error returned is ErrSubmissionInFlight; backend and transport failures are
// reported as Failure and NetworkError results.
func (c *Controller) Submit(ctx context.Context, fields Fields) (Result, error) {
	snapshot, err := c.begin(fields)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, snapshot), nil
}

// Go starts a submission and returns immediately. The transition to
// StateSubmitting happens before Go returns, so a concurrent call observes it.
// The result is delivered once on the returned channel.
func (c *Controller) Go(ctx context.Context, fields Fields) (<-chan Result, error) {
	snapshot, err := c.begin(fields)
	if err != nil {
		return nil, err
	}
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.run(ctx, snapshot)
	}()
	return out, nil
}

func (c *Controller) begin(fields Fields) (Fields, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return nil, ErrSubmissionInFlight
	}
	c.state = StateSubmitting
	c.display.SetText(ProcessingMessage)
	c.control.SetEnabled(false)
	c.control.SetLabel(SubmittingLabel)
	return fields.Clone(), nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.control.SetEnabled(true)
	c.control.SetLabel(IdleLabel)
	c.state = StateIdle
}

func (c *Controller) run(ctx context.Context, fields Fields) Result {
	defer c.finish()

	result := c.exchange(ctx, fields)
	if netErr, ok := result.(NetworkError); ok {
		c.logger.Error("error submitting form", zap.String("endpoint", c.endpoint), zap.Error(netErr.Err))
	}
	c.display.SetText(result.Message())
	return result
}

func (c *Controller) exchange(ctx context.Context, fields Fields) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return NetworkError{Err: fmt.Errorf("encode form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("submitting form", zap.String("endpoint", c.endpoint), zap.Int("fields", len(fields)))

	resp, err := c.client.Do(req)
	if err != nil {
		return NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return NetworkError{Err: ErrMalformedResponse}
	}

	c.logger.Debug("backend responded", zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return newSuccess(gjson.ParseBytes(body), fields)
	}
	return Failure{
		HTTPStatus: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       json.RawMessage(body),
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
