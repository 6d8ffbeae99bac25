package oozie

import (
	"github.com/juju/errors"
	"github.com/warriorguo/oozie/client"
	"github.com/warriorguo/oozie/hdfs"
	"github.com/warriorguo/oozie/jobs"
	"github.com/warriorguo/oozie/store"
	"github.com/warriorguo/oozie/store/mem"
	"github.com/warriorguo/oozie/store/postgres"
	"github.com/warriorguo/oozie/types"
)

func newOptions(opts []types.ClientOption) *types.ClientOptions {
	options := types.NewClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// NewClient returns a client of the orchestration service REST API alone.
func NewClient(opts ...types.ClientOption) (*client.Client, error) {
	return client.New(newOptions(opts))
}

/**
 * NewManager connects to the orchestration service, its staging filesystem
 * and the job record store named by opts.
 * The WebHDFS URL falls back to WEBHDFS_URL, then to the name-nodes of the
 * service configuration.
 */
func NewManager(opts ...types.ClientOption) (*jobs.Manager, error) {
	options := newOptions(opts)

	service, err := client.New(options)
	if err != nil {
		return nil, err
	}

	webHDFSURL, err := jobs.ResolveWebHDFSURL(options.Ctx, options, service)
	if err != nil {
		return nil, err
	}
	options.WebHDFSURL = webHDFSURL
	staging, err := hdfs.New(options.Ctx, options)
	if err != nil {
		return nil, err
	}

	var s store.Store
	// PostgresConfig takes precedence over MemStore
	if options.PostgresConfig != nil {
		s, err = postgres.NewPostgresStore(options.Ctx, options.PostgresConfig)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to create PostgreSQL store")
		}
	} else {
		// records live in memory unless a database is given
		s = mem.NewMemStore()
	}

	return jobs.NewManager(service, staging, s, options), nil
}
