package hawk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/hawknews/hawk-translation/internal"
)

// DefaultTimeout bounds one POST to the translation API.
const DefaultTimeout = 15 * time.Second

// Target says where to send a request and how to authenticate it.
type Target struct {
	BaseURL string
	APIKey  string
}

// Response is a successful (status < 400) answer from the API.
type Response struct {
	StatusCode int
	JobID      *string
	Latency    time.Duration
}

// TransportError wraps a failure below HTTP: DNS, connect, timeout, reset.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is returned when the API answers with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewClient(log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		http: resty.New().SetTimeout(DefaultTimeout).SetLogger(log),
		log:  log,
	}
}

// TranslateURL joins the configured base URL and the translate path.
func TranslateURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/translate"
}

// Translate posts req to {base}/translate once. It never retries.
func (c *Client) Translate(ctx context.Context, target Target, req internal.TranslationRequest) (*Response, error) {
	start := time.Now()
	endpoint := TranslateURL(target.BaseURL)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(target.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(req).
		Post(endpoint)
	if err != nil {
		c.log.Warnw("translate request failed", "url", endpoint, "error", err)
		return nil, &TransportError{Err: err}
	}

	latency := time.Since(start)
	status := resp.StatusCode()
	body := resp.Body()

	c.log.Debugw("translate response",
		"url", endpoint,
		"status", status,
		"latency", latency,
	)

	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: errorMessage(body, status)}
	}

	out := &Response{StatusCode: status, Latency: latency}
	if gjson.ValidBytes(body) {
		if id := gjson.GetBytes(body, "job_id"); id.Exists() && id.Type != gjson.Null {
			jobID := id.String()
			out.JobID = &jobID
		}
	}
	return out, nil
}

// errorMessage relays the detail field of an error body whenever it is
// present and not null, even when empty. The Hawk API itself nests its reason
// as {"detail": {"error": "..."}}; other non-string details are relayed raw.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		switch {
		case !detail.Exists() || detail.Type == gjson.Null:
		case detail.Type == gjson.String:
			return detail.Str
		case detail.IsObject() && detail.Get("error").Type == gjson.String:
			return detail.Get("error").Str
		default:
			return detail.Raw
		}
	}
	return fmt.Sprintf("API returned %d", status)
}
