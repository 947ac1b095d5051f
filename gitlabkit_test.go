package gitlabkit

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gitlabkit/internal/testutil"
)

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestClientEndToEndDownload(t *testing.T) {
	server := testutil.NewServer(t)
	server.Stub(http.MethodGet, "/api/v4/projects/42/jobs/artifacts/main/download", http.StatusOK, []byte("archive"))

	client, err := New(server.URL(), func(o *Options) {
		o.PrivateToken = "glpat-test"
	})
	require.NoError(t, err)

	payload, err := client.ProjectArtifacts("42").Download(context.Background(), "main", "build")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive"), payload.Data)

	calls := server.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "glpat-test", calls[0].Header.Get("PRIVATE-TOKEN"))
	assert.Equal(t, "job=build", calls[0].RawQuery)
}

func TestClientEndToEndJobArtifacts(t *testing.T) {
	server := testutil.NewServer(t)
	server.Stub(http.MethodGet, "/api/v4/projects/7/jobs/99/artifacts", http.StatusOK, []byte("zipzip"))

	client, err := New(server.URL(), func(o *Options) {
		o.JobToken = "ci-job-token"
	})
	require.NoError(t, err)

	payload, err := client.JobArtifacts("7", 99).Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("zipzip"), payload.Data)

	calls := server.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ci-job-token", calls[0].Header.Get("JOB-TOKEN"))
}

func TestRESTAccessor(t *testing.T) {
	client, err := New("https://gitlab.example.com")
	require.NoError(t, err)
	require.NotNil(t, client.REST())
	assert.Equal(t, "https://gitlab.example.com/api/v4", client.REST().BaseURL())
}
