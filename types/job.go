package types

import "time"

// JobRecord is what is remembered locally about a submitted job.
type JobRecord struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	AppPath string    `json:"app_path"`
	Status  JobStatus `json:"status"`
	// Properties is the job configuration the job was submitted with.
	Properties  map[string]string `json:"properties"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	// LastError keeps the last failure seen while polling the job.
	LastError string `json:"last_error,omitempty"`
}
