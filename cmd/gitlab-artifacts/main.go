// Command gitlab-artifacts exposes the artifact endpoint bindings on the
// command line: download an artifact archive, fetch a single file from
// inside one, or delete a project's artifacts.
//
// Connection settings resolve in order: flags, then a YAML config file
// (--config), then environment variables (GITLAB_URL, GITLAB_TOKEN,
// CI_JOB_TOKEN; a .env file in the working directory is honored).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/gitlabkit"
	"github.com/hupe1980/gitlabkit/logging"
	"github.com/hupe1980/gitlabkit/rest"
)

const usage = `Usage: gitlab-artifacts <command> [flags]

Commands:
  download      Download the artifact archive for a ref and job name
  raw           Download a single file from a ref/job artifact archive
  job-download  Download the artifact archive of a specific job ID
  job-raw       Download a single file from a specific job's archive
  delete        Delete all artifacts of a project

Run 'gitlab-artifacts <command> --help' for command flags.
`

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	URL      string `yaml:"url"`
	Token    string `yaml:"token"`
	JobToken string `yaml:"job_token"`
}

// connFlags are the flags shared by every command.
type connFlags struct {
	url        string
	token      string
	jobToken   string
	configPath string
	verbose    bool
	timeout    time.Duration
}

func (c *connFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&c.url, "url", "", "GitLab instance URL (default $GITLAB_URL)")
	flags.StringVar(&c.token, "token", "", "personal/project access token (default $GITLAB_TOKEN)")
	flags.StringVar(&c.jobToken, "job-token", "", "CI job token (default $CI_JOB_TOKEN)")
	flags.StringVar(&c.configPath, "config", "", "path to a YAML config file (url, token, job_token)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.DurationVar(&c.timeout, "timeout", 5*time.Minute, "overall request timeout")
}

// client resolves the connection settings and builds the API client.
func (c *connFlags) client() (*gitlabkit.Client, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := fileConfig{}
	if c.configPath != "" {
		raw, err := os.ReadFile(c.configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", c.configPath, err)
		}
	}

	url := firstNonEmpty(c.url, cfg.URL, os.Getenv("GITLAB_URL"))
	token := firstNonEmpty(c.token, cfg.Token, os.Getenv("GITLAB_TOKEN"))
	jobToken := firstNonEmpty(c.jobToken, cfg.JobToken, os.Getenv("CI_JOB_TOKEN"))

	if url == "" {
		return nil, fmt.Errorf("no GitLab URL given (flag --url, config file, or $GITLAB_URL)")
	}

	level := logging.LogLevelWarn
	if c.verbose {
		level = logging.LogLevelDebug
	}

	return gitlabkit.New(url, func(o *gitlabkit.Options) {
		o.PrivateToken = token
		o.JobToken = jobToken
		o.Logger = logging.NewSlogLogger(level, "text", false)
		o.RetryMax = 2
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// streamTo opens the output sink for a download: the given path, or stdout
// when the path is empty or "-". Downloads are streamed chunk by chunk so
// memory stays flat for large archives.
func streamTo(path string) (sink *os.File, cleanup func(), err error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func runDownload(args []string) error {
	flags := pflag.NewFlagSet("download", pflag.ExitOnError)
	conn := &connFlags{}
	conn.register(flags)
	project := flags.String("project", "", "project ID or namespace/project path (required)")
	ref := flags.String("ref", "", "branch or tag name (required)")
	job := flags.String("job", "", "job name (required)")
	out := flags.String("out", "", "output file (default stdout)")
	_ = flags.Parse(args)

	if *project == "" || *ref == "" || *job == "" {
		return fmt.Errorf("download requires --project, --ref and --job")
	}

	client, err := conn.client()
	if err != nil {
		return err
	}

	sink, cleanup, err := streamTo(*out)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()

	_, err = client.ProjectArtifacts(*project).Download(ctx, *ref, *job, func(o *rest.TransferOptions) {
		o.Streamed = true
		o.OnChunk = func(chunk []byte) error {
			_, writeErr := sink.Write(chunk)
			return writeErr
		}
	})
	return err
}

func runRaw(args []string) error {
	flags := pflag.NewFlagSet("raw", pflag.ExitOnError)
	conn := &connFlags{}
	conn.register(flags)
	project := flags.String("project", "", "project ID or namespace/project path (required)")
	ref := flags.String("ref", "", "branch or tag name (required)")
	job := flags.String("job", "", "job name (required)")
	path := flags.String("path", "", "file path inside the artifact archive (required)")
	out := flags.String("out", "", "output file (default stdout)")
	_ = flags.Parse(args)

	if *project == "" || *ref == "" || *job == "" || *path == "" {
		return fmt.Errorf("raw requires --project, --ref, --job and --path")
	}

	client, err := conn.client()
	if err != nil {
		return err
	}

	sink, cleanup, err := streamTo(*out)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()

	_, err = client.ProjectArtifacts(*project).Raw(ctx, *ref, *path, *job, func(o *rest.TransferOptions) {
		o.Streamed = true
		o.OnChunk = func(chunk []byte) error {
			_, writeErr := sink.Write(chunk)
			return writeErr
		}
	})
	return err
}

func runJobDownload(args []string) error {
	flags := pflag.NewFlagSet("job-download", pflag.ExitOnError)
	conn := &connFlags{}
	conn.register(flags)
	project := flags.String("project", "", "project ID or namespace/project path (required)")
	jobID := flags.Int64("job-id", 0, "job ID (required)")
	out := flags.String("out", "", "output file (default stdout)")
	_ = flags.Parse(args)

	if *project == "" || *jobID == 0 {
		return fmt.Errorf("job-download requires --project and --job-id")
	}

	client, err := conn.client()
	if err != nil {
		return err
	}

	sink, cleanup, err := streamTo(*out)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()

	_, err = client.JobArtifacts(*project, *jobID).Download(ctx, func(o *rest.TransferOptions) {
		o.Streamed = true
		o.OnChunk = func(chunk []byte) error {
			_, writeErr := sink.Write(chunk)
			return writeErr
		}
	})
	return err
}

func runJobRaw(args []string) error {
	flags := pflag.NewFlagSet("job-raw", pflag.ExitOnError)
	conn := &connFlags{}
	conn.register(flags)
	project := flags.String("project", "", "project ID or namespace/project path (required)")
	jobID := flags.Int64("job-id", 0, "job ID (required)")
	path := flags.String("path", "", "file path inside the artifact archive (required)")
	out := flags.String("out", "", "output file (default stdout)")
	_ = flags.Parse(args)

	if *project == "" || *jobID == 0 || *path == "" {
		return fmt.Errorf("job-raw requires --project, --job-id and --path")
	}

	client, err := conn.client()
	if err != nil {
		return err
	}

	sink, cleanup, err := streamTo(*out)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()

	_, err = client.JobArtifacts(*project, *jobID).Raw(ctx, *path, func(o *rest.TransferOptions) {
		o.Streamed = true
		o.OnChunk = func(chunk []byte) error {
			_, writeErr := sink.Write(chunk)
			return writeErr
		}
	})
	return err
}

func runDelete(args []string) error {
	flags := pflag.NewFlagSet("delete", pflag.ExitOnError)
	conn := &connFlags{}
	conn.register(flags)
	project := flags.String("project", "", "project ID or namespace/project path (required)")
	_ = flags.Parse(args)

	if *project == "" {
		return fmt.Errorf("delete requires --project")
	}

	client, err := conn.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()

	if err := client.ProjectArtifacts(*project).Delete(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "artifacts of project %s deleted\n", *project)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "download":
		err = runDownload(os.Args[2:])
	case "raw":
		err = runRaw(os.Args[2:])
	case "job-download":
		err = runJobDownload(os.Args[2:])
	case "job-raw":
		err = runJobRaw(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gitlab-artifacts: %v\n", err)
		os.Exit(1)
	}
}
