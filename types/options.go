package types

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
)

const (
	EnvOozieURL   = "OOZIE_URL"
	EnvWebHDFSURL = "WEBHDFS_URL"
)

func NewClientOptions() *ClientOptions {
	opts := &ClientOptions{Ctx: context.Background()}
	defaults.SetDefaults(opts)
	return opts
}

type ClientOptions struct {
	Ctx context.Context
	/**
	 * URL of the orchestration service, e.g. http://host:11000/oozie
	 * when empty, OOZIE_URL is used.
	 */
	URL string
	/**
	 * default: v1, the REST API version path segment.
	 */
	APIVersion string `default:"v1"`
	/**
	 * default: oozie, sent as user.name on submission.
	 */
	User string `default:"oozie"`
	/**
	 * WebHDFS URL, may list failover name-nodes: http://nn1,nn2:50070/
	 * when empty, WEBHDFS_URL is used, then the service's configuration.
	 */
	WebHDFSURL string
	// default: hdfs, used when the WebHDFS URL carries no user info.
	HDFSUser string `default:"hdfs"`
	// default: 50070, always tried after any port named in the URL.
	WebHDFSPort int `default:"50070"`
	/**
	 * default: 30s, per HTTP request timeout when HTTPClient is not set.
	 */
	Timeout time.Duration `default:"30s"`
	/**
	 * default: 8, how many job statuses are polled at once on refresh.
	 */
	StatusConcurrency int `default:"8"`
	/**
	 * default: true, repair the workflow before it is validated on deploy.
	 */
	Repair bool `default:"true"`
	HTTPClient *http.Client
	/**
	 * default: false, keep job records in memory only.
	 */
	MemStore bool `default:"false"`

	// If both MemStore and PostgresConfig are set, PostgresConfig takes precedence
	PostgresConfig *PostgresConfig
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // disable, require, verify-ca, verify-full
}

type ClientOption func(*ClientOptions)

// ResolvedURL returns the service URL: the explicit option, then OOZIE_URL.
func (o *ClientOptions) ResolvedURL() string {
	if o.URL != "" {
		return o.URL
	}
	return os.Getenv(EnvOozieURL)
}

// ResolvedWebHDFSURL returns the explicit option, then WEBHDFS_URL.
func (o *ClientOptions) ResolvedWebHDFSURL() string {
	if o.WebHDFSURL != "" {
		return o.WebHDFSURL
	}
	return os.Getenv(EnvWebHDFSURL)
}

// HTTP returns the configured client or a new one bounded by Timeout.
func (o *ClientOptions) HTTP() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: o.Timeout}
}

func WithContext(ctx context.Context) ClientOption {
	return func(opts *ClientOptions) {
		opts.Ctx = ctx
	}
}

func WithURL(url string) ClientOption {
	return func(opts *ClientOptions) {
		opts.URL = url
	}
}

func WithWebHDFSURL(url string) ClientOption {
	return func(opts *ClientOptions) {
		opts.WebHDFSURL = url
	}
}

func WithUser(user string) ClientOption {
	return func(opts *ClientOptions) {
		opts.User = user
	}
}

func WithAPIVersion(version string) ClientOption {
	return func(opts *ClientOptions) {
		opts.APIVersion = version
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

func SetStatusConcurrency(concurrency int) ClientOption {
	return func(opts *ClientOptions) {
		opts.StatusConcurrency = concurrency
	}
}

func DisableRepair() ClientOption {
	return func(opts *ClientOptions) {
		opts.Repair = false
	}
}

func EnableMemStore() ClientOption {
	return func(opts *ClientOptions) {
		opts.MemStore = true
	}
}

// WithPostgresConfig keeps job records in PostgreSQL
func WithPostgresConfig(config *PostgresConfig) ClientOption {
	return func(opts *ClientOptions) {
		opts.PostgresConfig = config
	}
}
