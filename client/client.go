package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/warriorguo/oozie/types"
)

var _ types.JobService = &Client{}

const (
	ActionStart   = "start"
	ActionSuspend = "suspend"
	ActionResume  = "resume"
	ActionKill    = "kill"
)

// Client talks to the REST API of the orchestration service.
type Client struct {
	base    string
	version string
	user    string
	http    *http.Client
}

/**
 * New returns a client for the service URL of opts, falling back to OOZIE_URL.
 * Nothing is sent until the first call.
 */
func New(opts *types.ClientOptions) (*Client, error) {
	base := strings.TrimRight(opts.ResolvedURL(), "/")
	if base == "" {
		return nil, types.NewClientErrorf(types.ReasonConfiguration,
			"no service URL given and %s is not set", types.EnvOozieURL)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, types.NewClientError(types.ReasonConfiguration, errors.Annotatef(err, "service URL %q", base))
	}
	return &Client{
		base:    base,
		version: opts.APIVersion,
		user:    opts.User,
		http:    opts.HTTP(),
	}, nil
}

func (c *Client) URL() string {
	return c.base
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base + "/" + c.version + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Healthcheck fails unless the service reports the NORMAL system mode.
func (c *Client) Healthcheck(ctx context.Context) error {
	data, err := c.getJSON(ctx, "checking status", c.endpoint("admin/status", nil))
	if err != nil {
		return err
	}
	mode, err := requireField(data, "systemMode")
	if err != nil {
		return err
	}
	if types.SystemMode(mode) != types.SystemNormal {
		return types.NewServerErrorf("service at %s is in %s mode", c.base, mode)
	}
	log.Infof("service at %s is healthy", c.base)
	return nil
}

// Config returns the service configuration.
func (c *Client) Config(ctx context.Context) (map[string]string, error) {
	data, err := c.getJSON(ctx, "reading configuration", c.endpoint("admin/configuration", nil))
	if err != nil {
		return nil, err
	}
	conf := make(map[string]string, len(data))
	for k, v := range data {
		conf[k] = cast.ToString(v)
	}
	return conf, nil
}

/**
 * Submit posts a job configuration document and returns the id the service
 * gave to the new job. The job is created in PREP state, see Run.
 */
func (c *Client) Submit(ctx context.Context, conf []byte) (string, error) {
	u := c.endpoint("jobs", url.Values{"user.name": {c.user}})
	body, err := c.do(ctx, http.MethodPost, u, "application/xml", conf, http.StatusCreated, "submitting")
	if err != nil {
		return "", err
	}
	data, err := parseJSON(body)
	if err != nil {
		return "", err
	}
	id, err := requireField(data, "id")
	if err != nil {
		return "", err
	}
	log.Debugf("submitted job %s", id)
	return id, nil
}

func (c *Client) Run(ctx context.Context, jobID string) error {
	return c.act(ctx, jobID, ActionStart, "starting")
}

func (c *Client) Suspend(ctx context.Context, jobID string) error {
	return c.act(ctx, jobID, ActionSuspend, "suspending")
}

func (c *Client) Resume(ctx context.Context, jobID string) error {
	return c.act(ctx, jobID, ActionResume, "resuming")
}

func (c *Client) Kill(ctx context.Context, jobID string) error {
	return c.act(ctx, jobID, ActionKill, "killing")
}

func (c *Client) act(ctx context.Context, jobID, action, verb string) error {
	u := c.endpoint("job/"+url.PathEscape(jobID), url.Values{"action": {action}})
	_, err := c.do(ctx, http.MethodPut, u, "", nil, http.StatusOK, verb)
	return err
}

// Status returns the current status of a job.
func (c *Client) Status(ctx context.Context, jobID string) (types.JobStatus, error) {
	u := c.endpoint("job/"+url.PathEscape(jobID), url.Values{"show": {"info"}})
	data, err := c.getJSON(ctx, "checking", u)
	if err != nil {
		return "", err
	}
	status, err := requireField(data, "status")
	if err != nil {
		return "", err
	}
	return types.JobStatus(status), nil
}

func (c *Client) getJSON(ctx context.Context, verb, u string) (types.Data, error) {
	body, err := c.do(ctx, http.MethodGet, u, "", nil, http.StatusOK, verb)
	if err != nil {
		return nil, err
	}
	return parseJSON(body)
}

func (c *Client) do(ctx context.Context, method, u, contentType string, payload []byte, expect int, verb string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Annotatef(err, "building request %s %s", method, u)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.Debugf("%s %s", method, u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewServerError(errors.Annotatef(err, "%s job at %s", verb, u))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewServerError(errors.Annotatef(err, "reading response of %s", u))
	}
	if resp.StatusCode != expect {
		return nil, types.ErrorFromStatus(resp.StatusCode, verb, u, string(body))
	}
	return body, nil
}

func parseJSON(body []byte) (types.Data, error) {
	data := types.Data{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, types.NewServerError(errors.Annotatef(err, "malformed response %q", string(body)))
	}
	return data, nil
}

func requireField(data types.Data, field string) (string, error) {
	v, exists := data.GetNonEmptyString(field)
	if !exists {
		return "", types.NewServerErrorf("malformed response: missing field %q", field)
	}
	return v, nil
}

// XMLFromInput returns the contents of the file s names, or s itself when no such file exists.
func XMLFromInput(s string) ([]byte, error) {
	info, err := os.Stat(s)
	if err != nil || info.IsDir() {
		return []byte(s), nil
	}
	b, err := os.ReadFile(s)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", s)
	}
	return b, nil
}
