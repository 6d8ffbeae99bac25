package jobs

import (
	"context"
	"strings"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
	"github.com/warriorguo/oozie/workflow"
)

const WorkflowFile = "workflow.xml"

/**
 * Deploy stages wf under appPath and submits it as a new job in PREP state.
 *
 *  1. the workflow is repaired, unless disabled, and validated
 *  2. its XML is written to appPath/workflow.xml
 *  3. a job configuration is built from props, the user, the application
 *     path and the cluster name-node and job-tracker (discovered from the
 *     service when props does not name them)
 *  4. the configuration is submitted and the job is recorded
 */
func (m *Manager) Deploy(ctx context.Context, wf *workflow.Workflow, appPath string, props map[string]string) (string, error) {
	if m.staging == nil {
		return "", types.NewClientErrorf(types.ReasonConfiguration, "no staging filesystem configured")
	}
	appPath = strings.TrimRight(appPath, "/")
	if appPath == "" {
		return "", types.NewClientErrorf(types.ReasonConfiguration, "no application path given")
	}

	if err := wf.Check(m.opts.Repair); err != nil {
		return "", err
	}
	b, err := wf.XML()
	if err != nil {
		return "", errors.Trace(err)
	}

	if err := m.staging.Mkdir(ctx, appPath); err != nil {
		return "", errors.Annotatef(err, "creating %s", appPath)
	}
	wfPath := utils.JoinPath(appPath, WorkflowFile)
	if err := m.staging.Write(ctx, wfPath, b); err != nil {
		return "", errors.Annotatef(err, "staging %s", wfPath)
	}
	log.Infof("staged workflow %s at %s", wf.Node.Name(), wfPath)

	conf, err := m.jobProperties(ctx, appPath, props)
	if err != nil {
		return "", err
	}
	return m.Submit(ctx, wf.Node.Name(), conf)
}

// Submit sends an already built job configuration and records the new job.
func (m *Manager) Submit(ctx context.Context, name string, conf map[string]string) (string, error) {
	doc, err := workflow.JobConfiguration(conf)
	if err != nil {
		return "", errors.Trace(err)
	}
	jobID, err := m.service.Submit(ctx, doc)
	if err != nil {
		return "", err
	}
	log.Infof("submitted job %s", jobID)

	now := m.now()
	record := &types.JobRecord{
		ID:          jobID,
		Name:        name,
		AppPath:     conf[PropAppPath],
		Status:      types.JobPrep,
		Properties:  conf,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveRecord(ctx, record); err != nil {
		return jobID, errors.Annotatef(err, "recording job %s", jobID)
	}
	return jobID, nil
}

func (m *Manager) jobProperties(ctx context.Context, appPath string, props map[string]string) (map[string]string, error) {
	conf := utils.CloneMap(props)
	if conf[PropUser] == "" {
		conf[PropUser] = m.opts.User
	}

	if conf[PropNameNode] == "" || conf[PropJobTracker] == "" {
		cluster, err := DiscoverCluster(ctx, m.service)
		if err != nil {
			return nil, err
		}
		if conf[PropNameNode] == "" {
			conf[PropNameNode] = cluster.NameNode()
		}
		if conf[PropJobTracker] == "" {
			conf[PropJobTracker] = cluster.JobTracker()
		}
		if conf[PropNameNode] == "" || conf[PropJobTracker] == "" {
			return nil, types.NewClientErrorf(types.ReasonConfiguration,
				"%s and %s are neither given nor found in the service configuration", PropNameNode, PropJobTracker)
		}
	}

	if conf[PropAppPath] == "" {
		conf[PropAppPath] = appPath
		if !strings.Contains(appPath, "://") {
			conf[PropAppPath] = strings.TrimRight(conf[PropNameNode], "/") + "/" + strings.TrimLeft(appPath, "/")
		}
	}
	return conf, nil
}
