package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/hupe1980/gitlabkit/logging"
)

const (
	// DefaultUserAgent identifies the client on outgoing requests.
	DefaultUserAgent = "gitlabkit"

	// apiPrefix is the GitLab REST API root appended to the base URL when
	// the caller did not include it.
	apiPrefix = "/api/v4"

	// maxErrorBody caps how much of an error response body is read when
	// extracting the server-provided message.
	maxErrorBody = 64 << 10
)

// Options configures a Client instance.
type Options struct {
	// HTTPClient performs the actual requests. If nil, http.DefaultClient
	// is used. Transport timeouts and TLS configuration belong here.
	HTTPClient *http.Client

	// Logger receives structured request/retry logs. If nil, logging is
	// disabled.
	Logger logging.Logger

	// PrivateToken is a personal or project access token, sent as the
	// PRIVATE-TOKEN header. Takes precedence over OAuthToken and JobToken.
	PrivateToken string

	// OAuthToken is an OAuth2 access token, sent as a bearer Authorization
	// header.
	OAuthToken string

	// JobToken is a CI job token (CI_JOB_TOKEN), sent as the JOB-TOKEN
	// header. Permits artifact access across project boundaries for
	// multi-project pipelines.
	JobToken string

	// UserAgent overrides the User-Agent header. Empty means
	// DefaultUserAgent.
	UserAgent string

	// RetryMax is the maximum number of retries for idempotent requests
	// that fail with a transport error, 429 or a 5xx status. Zero disables
	// retrying.
	RetryMax uint64

	// RetryInitialInterval is the first backoff delay. Zero means 500ms.
	RetryInitialInterval time.Duration
}

// Client is the authenticated HTTP collaborator shared by all endpoint
// bindings. It is safe for concurrent use; calls carry no state between them.
type Client struct {
	baseURL              string
	httpClient           *http.Client
	logger               logging.Logger
	privateToken         string
	oauthToken           string
	jobToken             string
	userAgent            string
	retryMax             uint64
	retryInitialInterval time.Duration
}

// NewClient creates a Client for the GitLab instance at baseURL (for example
// "https://gitlab.example.com"). The /api/v4 prefix is appended when missing.
func NewClient(baseURL string, optFns ...func(o *Options)) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rest: base URL is required")
	}

	// Validate the URL structure up front. Request URLs are then built by
	// direct concatenation on the trimmed string form to avoid the
	// double-encoding pitfalls of rebuilding url.URL values per request.
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("rest: invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("rest: base URL %q must include scheme and host", baseURL)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	retryInitial := opts.RetryInitialInterval
	if retryInitial <= 0 {
		retryInitial = 500 * time.Millisecond
	}

	trimmed := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(trimmed, apiPrefix) {
		trimmed += apiPrefix
	}

	return &Client{
		baseURL:              trimmed,
		httpClient:           httpClient,
		logger:               logger,
		privateToken:         opts.PrivateToken,
		oauthToken:           opts.OAuthToken,
		jobToken:             opts.JobToken,
		userAgent:            userAgent,
		retryMax:             opts.RetryMax,
		retryInitialInterval: retryInitial,
	}, nil
}

// BaseURL returns the normalized base URL requests are issued against,
// including the /api/v4 prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues an authenticated GET against path. In buffered mode (streamed
// false) the body is fully read and the connection released before Get
// returns. In streamed mode the returned Response holds the open body; the
// caller must consume its chunk sequence or call Close.
//
// GETs are retried on transport errors, 429 and 5xx statuses, always before
// any body bytes have been handed to the caller. 4xx statuses other than 429
// fail immediately with a *Error.
func (c *Client) Get(ctx context.Context, path string, query url.Values, streamed bool) (*Response, error) {
	var resp *Response
	operation := func() error {
		var err error
		resp, err = c.do(ctx, http.MethodGet, path, query, streamed)
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && !retryableStatus(apiErr.StatusCode) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, c.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete issues an authenticated DELETE against path. DELETEs are not
// retried: a mutating request that may have reached the server is not safe
// to replay from here.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	_, err := c.do(ctx, http.MethodDelete, path, query, false)
	return err
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitialInterval
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.retryMax), ctx)
}

// retryableStatus reports whether a status is worth retrying. Authentication
// and not-found rejections are deterministic; only throttling and server-side
// failures may clear up on their own.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, streamed bool) (*Response, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rest: failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("X-Request-Id", requestID)
	c.setAuth(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("rest: %s %s: %w", method, path, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer response.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		apiErr := &Error{
			StatusCode: response.StatusCode,
			Message:    errorMessage(body, response.Status),
			Method:     method,
			Path:       path,
		}
		c.logger.Debug("request rejected", "method", method, "path", path, "request_id", requestID, "status", response.StatusCode)
		return nil, apiErr
	}

	c.logger.Debug("request completed", "method", method, "path", path, "request_id", requestID, "status", response.StatusCode)

	if streamed {
		return &Response{
			status: response.StatusCode,
			header: response.Header,
			body:   response.Body,
		}, nil
	}

	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("rest: reading response body: %w", err)
	}
	return &Response{
		status: response.StatusCode,
		header: response.Header,
		data:   data,
	}, nil
}

// setAuth injects exactly one credential header. Private token wins over
// OAuth token, which wins over job token.
func (c *Client) setAuth(request *http.Request) {
	switch {
	case c.privateToken != "":
		request.Header.Set("PRIVATE-TOKEN", c.privateToken)
	case c.oauthToken != "":
		request.Header.Set("Authorization", "Bearer "+c.oauthToken)
	case c.jobToken != "":
		request.Header.Set("JOB-TOKEN", c.jobToken)
	}
}

// errorMessage extracts the server-provided message from a GitLab error
// envelope ({"message": ...} or {"error": ...}), falling back to the raw body
// and finally the HTTP status line.
func errorMessage(body []byte, status string) string {
	var envelope struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		switch message := envelope.Message.(type) {
		case string:
			if message != "" {
				return message
			}
		case nil:
		default:
			return fmt.Sprintf("%v", message)
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}
	return status
}
