package artifacts

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/hupe1980/gitlabkit/logging"
	"github.com/hupe1980/gitlabkit/rest"
)

// Options configures an endpoint binding.
type Options struct {
	// Logger receives binding-level logs (deprecation notices). If nil,
	// logging is disabled.
	Logger logging.Logger
}

// ProjectArtifacts binds the artifact endpoints addressed by ref name and job
// name within a project. The project ID may be numeric or the URL-encodable
// "namespace/project" form; it is fixed at construction, while ref name, job
// name and artifact path are supplied per call.
type ProjectArtifacts struct {
	client    *rest.Client
	logger    logging.Logger
	projectID string
	path      string

	archiveWarn sync.Once
}

// NewProjectArtifacts creates the binding for the given project.
func NewProjectArtifacts(client *rest.Client, projectID string, optFns ...func(o *Options)) *ProjectArtifacts {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &ProjectArtifacts{
		client:    client,
		logger:    opts.Logger,
		projectID: projectID,
		path:      "/projects/" + url.PathEscape(projectID) + "/jobs/artifacts",
	}
}

// Download fetches the artifact archive produced for refName by the named
// job. refName must be a branch or tag name; HEAD and commit SHAs are not
// supported by the endpoint. The job name is sent as the job query parameter;
// extra parameters (for example job_token) go through TransferOptions.Query.
//
// The result shape follows the TransferOptions precedence (iterator, then
// streamed, then buffered). Fetch failures are wrapped in *GetError.
func (p *ProjectArtifacts) Download(ctx context.Context, refName, job string, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	opts := applyTransferOptions(optFns)
	path := p.path + "/" + url.PathEscape(refName) + "/download"
	return fetch(ctx, p.client, path, queryWith(opts, "job", job), opts)
}

// Raw fetches a single file at artifactPath from inside the artifact archive
// produced for refName by the named job. artifactPath is a path within the
// archive; its existence is the caller's responsibility and is not validated
// before the request.
func (p *ProjectArtifacts) Raw(ctx context.Context, refName, artifactPath, job string, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	opts := applyTransferOptions(optFns)
	path := p.path + "/" + url.PathEscape(refName) + "/raw/" + escapeArtifactPath(artifactPath)
	return fetch(ctx, p.client, path, queryWith(opts, "job", job), opts)
}

// Delete removes all artifacts of the project that are eligible for
// deletion. Failures are wrapped in *DeleteError.
func (p *ProjectArtifacts) Delete(ctx context.Context, optFns ...func(o *DeleteOptions)) error {
	opts := DeleteOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	path := "/projects/" + url.PathEscape(p.projectID) + "/artifacts"
	if err := p.client.Delete(ctx, path, opts.Query); err != nil {
		return &DeleteError{Err: err}
	}
	return nil
}

// Archive fetches the artifact archive for refName and job.
//
// Deprecated: Archive mirrors the legacy callable-manager affordance and will
// be removed. Use Download instead.
func (p *ProjectArtifacts) Archive(ctx context.Context, refName, job string, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	p.archiveWarn.Do(func() {
		p.logger.Warn("ProjectArtifacts.Archive is deprecated, use Download instead")
	})
	return p.Download(ctx, refName, job, optFns...)
}

// DeleteOptions carries extra query parameters for Delete (for example sudo).
type DeleteOptions struct {
	Query url.Values
}

// applyTransferOptions folds the option functions into a TransferOptions
// value. Always non-nil so downstream helpers need no nil checks.
func applyTransferOptions(optFns []func(o *rest.TransferOptions)) *rest.TransferOptions {
	opts := &rest.TransferOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	return opts
}

// queryWith merges the caller's extra query parameters with the pairs the
// operation itself sets. The caller's values are copied, never mutated.
func queryWith(opts *rest.TransferOptions, pairs ...string) url.Values {
	query := url.Values{}
	for key, values := range opts.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			query.Set(pairs[i], pairs[i+1])
		}
	}
	return query
}

// escapeArtifactPath escapes each segment of a path inside the archive while
// preserving the separating slashes, which are part of the URL structure.
func escapeArtifactPath(artifactPath string) string {
	segments := strings.Split(artifactPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// fetch issues the GET and materializes the response. Streamed and iterator
// modes both request streamed transport, so the body is consumed
// incrementally and the connection lives exactly as long as the iteration.
func fetch(ctx context.Context, client *rest.Client, path string, query url.Values, opts *rest.TransferOptions) (*rest.Payload, error) {
	resp, err := client.Get(ctx, path, query, opts.Streamed || opts.Iterator)
	if err != nil {
		return nil, &GetError{Err: err}
	}
	payload, err := rest.Materialize(resp, opts)
	if err != nil {
		return nil, &GetError{Err: err}
	}
	return payload, nil
}
