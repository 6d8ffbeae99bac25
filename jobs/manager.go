package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie/store"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
)

/**
 * Manager deploys workflows to the orchestration service and keeps a record
 * of every job it submitted, so their status survives the process when the
 * store does.
 */
type Manager struct {
	mu sync.Mutex

	opts    *types.ClientOptions
	service types.JobService
	staging types.Staging
	store   store.Store

	now func() time.Time
}

/**
 * NewManager wires the collaborators together. staging may be nil, in which
 * case Deploy fails but every other call works.
 */
func NewManager(service types.JobService, staging types.Staging, s store.Store, opts *types.ClientOptions) *Manager {
	if opts == nil {
		opts = types.NewClientOptions()
	}
	return &Manager{
		opts:    opts,
		service: service,
		staging: staging,
		store:   s,
		now:     time.Now,
	}
}

func (m *Manager) Service() types.JobService {
	return m.service
}

func (m *Manager) Staging() types.Staging {
	return m.staging
}

func (m *Manager) Healthcheck(ctx context.Context) error {
	return m.service.Healthcheck(ctx)
}

// Close releases the record store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) Start(ctx context.Context, jobID string) error {
	return m.act(ctx, jobID, "starting", m.service.Run, types.JobRunning)
}

func (m *Manager) Suspend(ctx context.Context, jobID string) error {
	return m.act(ctx, jobID, "suspending", m.service.Suspend, types.JobSuspended)
}

func (m *Manager) Resume(ctx context.Context, jobID string) error {
	return m.act(ctx, jobID, "resuming", m.service.Resume, types.JobRunning)
}

func (m *Manager) Kill(ctx context.Context, jobID string) error {
	return m.act(ctx, jobID, "killing", m.service.Kill, types.JobKilled)
}

func (m *Manager) act(ctx context.Context, jobID, verb string, call func(context.Context, string) error, status types.JobStatus) error {
	if err := call(ctx, jobID); err != nil {
		return err
	}
	log.Infof("%s job %s", verb, jobID)
	return m.updateRecord(ctx, jobID, func(r *types.JobRecord) {
		r.Status = status
		r.LastError = ""
	})
}

// Status asks the service for the job status and records it.
func (m *Manager) Status(ctx context.Context, jobID string) (types.JobStatus, error) {
	status, err := m.service.Status(ctx, jobID)
	if err != nil {
		if uerr := m.updateRecord(ctx, jobID, func(r *types.JobRecord) { r.LastError = err.Error() }); uerr != nil {
			log.Warnf("recording failure of job %s: %v", jobID, uerr)
		}
		return "", err
	}
	if err := m.updateRecord(ctx, jobID, func(r *types.JobRecord) {
		r.Status = status
		r.LastError = ""
	}); err != nil {
		return "", err
	}
	return status, nil
}

// Record returns the stored record of a job, or a NotFound ClientError.
func (m *Manager) Record(ctx context.Context, jobID string) (*types.JobRecord, error) {
	b, err := m.store.Get(ctx, store.PrefixJobs, jobID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if b == nil {
		return nil, types.NewClientErrorf(types.ReasonNotFound, "no record of job %s", jobID)
	}
	record := &types.JobRecord{}
	if err := utils.Unserialize(b, record); err != nil {
		return nil, errors.Annotatef(err, "record of job %s", jobID)
	}
	return record, nil
}

// Records returns every stored record in job id order. Unreadable records are logged and skipped.
func (m *Manager) Records(ctx context.Context) ([]*types.JobRecord, error) {
	records := make([]*types.JobRecord, 0)
	err := m.store.List(ctx, store.PrefixJobs, func(jobID string) bool {
		record, err := m.Record(ctx, jobID)
		if err != nil {
			log.Errorf("load record of job %s failed: %v", jobID, err)
			return true
		}
		records = append(records, record)
		return true
	})
	return records, errors.Trace(err)
}

// Forget drops the record of a job, the job itself is left alone.
func (m *Manager) Forget(ctx context.Context, jobID string) error {
	return errors.Trace(m.store.Remove(ctx, store.PrefixJobs, jobID))
}

/**
 * Refresh polls the status of every job not yet in a terminal state, at most
 * StatusConcurrency at a time. The returned map holds the jobs whose poll
 * failed, the error is for failures to read the records at all.
 */
func (m *Manager) Refresh(ctx context.Context) (map[string]error, error) {
	records, err := m.Records(ctx)
	if err != nil {
		return nil, err
	}

	concurrency := m.opts.StatusConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	wp := workerpool.New(concurrency)

	var mu sync.Mutex
	failed := make(map[string]error)
	for _, record := range records {
		if record.Status.IsTerminal() {
			continue
		}
		jobID := record.ID
		wp.Submit(func() {
			if _, err := m.Status(ctx, jobID); err != nil {
				mu.Lock()
				failed[jobID] = err
				mu.Unlock()
			}
		})
	}
	wp.StopWait()
	return failed, nil
}

/**
 * Wait polls the job every interval until it reaches a terminal status, which
 * is returned. Polling errors are returned as they happen.
 */
func (m *Manager) Wait(ctx context.Context, jobID string, interval time.Duration) (types.JobStatus, error) {
	if interval <= 0 {
		return "", types.NewClientErrorf(types.ReasonConfiguration, "poll interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := m.Status(ctx, jobID)
		if err != nil {
			return "", err
		}
		if status.IsTerminal() {
			return status, nil
		}
		log.Debugf("job %s is %s", jobID, status)

		select {
		case <-ctx.Done():
			return status, errors.Annotatef(ctx.Err(), "waiting for job %s", jobID)
		case <-ticker.C:
		}
	}
}

func (m *Manager) saveRecord(ctx context.Context, record *types.JobRecord) error {
	b, err := utils.Serialize(record)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(m.store.Set(ctx, store.PrefixJobs, record.ID, b))
}

// updateRecord applies fn to the record of jobID, creating a bare one for jobs submitted elsewhere.
func (m *Manager) updateRecord(ctx context.Context, jobID string, fn func(r *types.JobRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.Record(ctx, jobID)
	if err != nil {
		if reason, _ := types.ClientReason(err); reason != types.ReasonNotFound {
			return err
		}
		record = &types.JobRecord{ID: jobID, SubmittedAt: m.now()}
	}
	fn(record)
	record.UpdatedAt = m.now()
	return m.saveRecord(ctx, record)
}
