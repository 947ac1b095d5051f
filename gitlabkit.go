// Package gitlabkit provides a typed Go client for the GitLab REST endpoints
// that serve build/job artifacts. Most applications interact with this
// package by:
//  1. Creating a Client via New() with an instance URL and a credential
//  2. Obtaining an endpoint binding (ProjectArtifacts or JobArtifacts)
//  3. Calling Download, Raw or Delete with the identifiers of the target
//
// The facade delegates transport concerns (authentication headers, retries,
// error-status translation) to the rest package while keeping setup and usage
// ergonomics concise. Defaults are safe for local development and testing;
// production deployments typically supply a tuned *http.Client and a
// structured logger.
package gitlabkit

import (
	"net/http"
	"time"

	"github.com/hupe1980/gitlabkit/artifacts"
	"github.com/hupe1980/gitlabkit/logging"
	"github.com/hupe1980/gitlabkit/rest"
)

// Options configures the gitlabkit Client.
type Options struct {
	// HTTPClient performs the actual requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Logger receives structured logs from the client and the bindings.
	// If nil, logging is disabled.
	Logger logging.Logger

	// PrivateToken is a personal or project access token. Takes precedence
	// over OAuthToken and JobToken.
	PrivateToken string

	// OAuthToken is an OAuth2 access token.
	OAuthToken string

	// JobToken is a CI job token (CI_JOB_TOKEN).
	JobToken string

	// UserAgent overrides the User-Agent header on outgoing requests.
	UserAgent string

	// RetryMax is the maximum number of retries for idempotent requests.
	// Zero disables retrying.
	RetryMax uint64

	// RetryInitialInterval is the first backoff delay between retries.
	RetryInitialInterval time.Duration
}

// Client is the entry point to the artifact endpoint bindings. It is safe
// for concurrent use.
type Client struct {
	rest   *rest.Client
	logger logging.Logger
}

// New creates a Client for the GitLab instance at baseURL, for example
// "https://gitlab.com" or a self-managed host. The /api/v4 prefix is
// appended when missing.
func New(baseURL string, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	restClient, err := rest.NewClient(baseURL, func(o *rest.Options) {
		o.HTTPClient = opts.HTTPClient
		o.Logger = logger
		o.PrivateToken = opts.PrivateToken
		o.OAuthToken = opts.OAuthToken
		o.JobToken = opts.JobToken
		o.UserAgent = opts.UserAgent
		o.RetryMax = opts.RetryMax
		o.RetryInitialInterval = opts.RetryInitialInterval
	})
	if err != nil {
		return nil, err
	}

	return &Client{rest: restClient, logger: logger}, nil
}

// REST exposes the underlying HTTP collaborator for callers that need to
// reach endpoints without a typed binding.
func (c *Client) REST() *rest.Client { return c.rest }

// ProjectArtifacts returns the binding for artifacts addressed by ref name
// and job name within the given project. projectID may be numeric or the
// "namespace/project" form.
func (c *Client) ProjectArtifacts(projectID string) *artifacts.ProjectArtifacts {
	return artifacts.NewProjectArtifacts(c.rest, projectID, func(o *artifacts.Options) {
		o.Logger = c.logger
	})
}

// JobArtifacts returns the binding for artifacts addressed by job ID within
// the given project.
func (c *Client) JobArtifacts(projectID string, jobID int64) *artifacts.JobArtifacts {
	return artifacts.NewJobArtifacts(c.rest, projectID, jobID, func(o *artifacts.Options) {
		o.Logger = c.logger
	})
}
