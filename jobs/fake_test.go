package jobs

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/warriorguo/oozie/types"
)

// fakeService is an in-process orchestration service.
type fakeService struct {
	mu        sync.Mutex
	conf      map[string]string
	submitted [][]byte
	statuses  map[string]types.JobStatus
	// polls counts Status calls per job
	polls    map[string]int
	statusFn func(jobID string, poll int) (types.JobStatus, error)
	healthy  error
}

var _ types.JobService = &fakeService{}

func newFakeService() *fakeService {
	return &fakeService{
		conf: map[string]string{
			NameNodeWhitelistKey:   "nn1:8020,nn2:8020",
			JobTrackerWhitelistKey: "jt:8032",
		},
		statuses: map[string]types.JobStatus{},
		polls:    map[string]int{},
	}
}

func (f *fakeService) Healthcheck(ctx context.Context) error {
	return f.healthy
}

func (f *fakeService) Config(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conf, nil
}

func (f *fakeService) Submit(ctx context.Context, conf []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, conf)
	id := fmt.Sprintf("%07d-oozie-W", len(f.submitted))
	f.statuses[id] = types.JobPrep
	return id, nil
}

func (f *fakeService) set(jobID string, status types.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.statuses[jobID]; !exists {
		return types.ErrorFromStatus(404, "changing", "/v1/job/"+jobID, "no such job")
	}
	f.statuses[jobID] = status
	return nil
}

func (f *fakeService) Run(ctx context.Context, jobID string) error {
	return f.set(jobID, types.JobRunning)
}

func (f *fakeService) Suspend(ctx context.Context, jobID string) error {
	return f.set(jobID, types.JobSuspended)
}

func (f *fakeService) Resume(ctx context.Context, jobID string) error {
	return f.set(jobID, types.JobRunning)
}

func (f *fakeService) Kill(ctx context.Context, jobID string) error {
	return f.set(jobID, types.JobKilled)
}

func (f *fakeService) Status(ctx context.Context, jobID string) (types.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[jobID]++
	if f.statusFn != nil {
		return f.statusFn(jobID, f.polls[jobID])
	}
	status, exists := f.statuses[jobID]
	if !exists {
		return "", types.ErrorFromStatus(404, "checking", "/v1/job/"+jobID, "no such job")
	}
	return status, nil
}

// fakeStaging keeps staged files in memory.
type fakeStaging struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  []string
}

var _ types.Staging = &fakeStaging{}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{files: map[string][]byte{}}
}

func (f *fakeStaging) Mkdir(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, p)
	return nil
}

func (f *fakeStaging) Write(ctx context.Context, p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = data
	return nil
}

func (f *fakeStaging) Read(ctx context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, exists := f.files[p]
	if !exists {
		return nil, types.NewClientErrorf(types.ReasonNotFound, "%s", p)
	}
	return data, nil
}

func (f *fakeStaging) ListDir(ctx context.Context, p string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.files {
		if path.Dir(name) == strings.TrimRight(p, "/") {
			names = append(names, path.Base(name))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStaging) CopyFromLocal(ctx context.Context, localPath, remotePath string) error {
	return types.NewClientErrorf(types.ReasonNotFound, "%s", localPath)
}

func (f *fakeStaging) CopyToLocal(ctx context.Context, remotePath, localPath string) error {
	return types.NewClientErrorf(types.ReasonNotFound, "%s", remotePath)
}
