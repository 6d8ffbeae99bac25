package types

import "context"

type JobStatus string

const (
	JobPrep      JobStatus = "PREP"
	JobRunning   JobStatus = "RUNNING"
	JobSuspended JobStatus = "SUSPENDED"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobKilled    JobStatus = "KILLED"
	JobFailed    JobStatus = "FAILED"
)

// IsTerminal reports whether the remote service will never move the job again.
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobKilled || s == JobFailed
}

type SystemMode string

const (
	SystemNormal   SystemMode = "NORMAL"
	SystemNoWebSvc SystemMode = "NOWEBSERVICE"
	SystemSafe     SystemMode = "SAFEMODE"
)

/**
 * JobService is the orchestration service's job-lifecycle API.
 * Every call fails with a ClientError for 4xx responses and a ServerError for
 * anything else unexpected, see ErrorFromStatus.
 */
type JobService interface {
	Healthcheck(ctx context.Context) error
	/**
	 * Config returns the service's own configuration, used to discover
	 * the job-tracker and name-node defaults.
	 */
	Config(ctx context.Context) (map[string]string, error)

	Submit(ctx context.Context, conf []byte) (string, error)
	Run(ctx context.Context, jobID string) error
	Suspend(ctx context.Context, jobID string) error
	Resume(ctx context.Context, jobID string) error
	Kill(ctx context.Context, jobID string) error
	Status(ctx context.Context, jobID string) (JobStatus, error)
}

/**
 * Staging is the distributed filesystem the serialized workflow is written to
 * before submission.
 */
type Staging interface {
	Mkdir(ctx context.Context, path string) error
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	ListDir(ctx context.Context, path string) ([]string, error)
	CopyFromLocal(ctx context.Context, localPath, remotePath string) error
	CopyToLocal(ctx context.Context, remotePath, localPath string) error
}
