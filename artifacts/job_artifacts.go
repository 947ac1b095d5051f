package artifacts

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/hupe1980/gitlabkit/logging"
	"github.com/hupe1980/gitlabkit/rest"
)

// JobArtifacts binds the artifact endpoints addressed by job ID. Project ID
// and job ID are fixed at construction; the artifact path is supplied per
// call.
type JobArtifacts struct {
	client    *rest.Client
	logger    logging.Logger
	projectID string
	jobID     int64
	path      string

	archiveWarn sync.Once
}

// NewJobArtifacts creates the binding for the given project and job.
func NewJobArtifacts(client *rest.Client, projectID string, jobID int64, optFns ...func(o *Options)) *JobArtifacts {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &JobArtifacts{
		client:    client,
		logger:    opts.Logger,
		projectID: projectID,
		jobID:     jobID,
		path:      "/projects/" + url.PathEscape(projectID) + "/jobs/" + strconv.FormatInt(jobID, 10) + "/artifacts",
	}
}

// Download fetches the full artifact archive of the job. The result shape
// follows the TransferOptions precedence (iterator, then streamed, then
// buffered). Fetch failures are wrapped in *GetError.
func (j *JobArtifacts) Download(ctx context.Context, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	opts := applyTransferOptions(optFns)
	return fetch(ctx, j.client, j.path, queryWith(opts), opts)
}

// Raw fetches a single file at artifactPath from inside the job's artifact
// archive. artifactPath is a path within the archive; its existence is the
// caller's responsibility and is not validated before the request.
func (j *JobArtifacts) Raw(ctx context.Context, artifactPath string, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	opts := applyTransferOptions(optFns)
	path := j.path + "/" + escapeArtifactPath(artifactPath)
	return fetch(ctx, j.client, path, queryWith(opts), opts)
}

// Archive fetches the job's artifact archive.
//
// Deprecated: Archive mirrors the legacy callable-manager affordance and will
// be removed. Use Download instead.
func (j *JobArtifacts) Archive(ctx context.Context, optFns ...func(o *rest.TransferOptions)) (*rest.Payload, error) {
	j.archiveWarn.Do(func() {
		j.logger.Warn("JobArtifacts.Archive is deprecated, use Download instead")
	})
	return j.Download(ctx, optFns...)
}
