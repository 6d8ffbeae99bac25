package hdfs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
)

var _ types.Staging = &Client{}

const apiPath = "/webhdfs/v1"

// FileStatus is the WebHDFS description of a file or directory.
type FileStatus struct {
	PathSuffix       string `json:"pathSuffix"`
	Type             string `json:"type"`
	Length           int64  `json:"length"`
	Owner            string `json:"owner"`
	Group            string `json:"group"`
	Permission       string `json:"permission"`
	ModificationTime int64  `json:"modificationTime"`
	Replication      int    `json:"replication"`
}

func (s *FileStatus) IsDir() bool {
	return s.Type == "DIRECTORY"
}

// Client stages files on a name-node through its WebHDFS REST API.
type Client struct {
	base string
	user string
	http *http.Client
}

type candidate struct {
	scheme string
	host   string
	port   int
	user   string
}

func (c candidate) base() string {
	return c.scheme + "://" + c.host + ":" + strconv.Itoa(c.port) + apiPath
}

/**
 * New connects to the first name-node of the WebHDFS URL that answers a
 * listing of "/". The URL comes from opts, then WEBHDFS_URL, and may name
 * failover hosts: http://nn1,nn2:50070/ or just nn1,nn2.
 * Each host is tried on the URL port, its own port, then the default port.
 */
func New(ctx context.Context, opts *types.ClientOptions) (*Client, error) {
	raw := opts.ResolvedWebHDFSURL()
	if raw == "" {
		return nil, types.NewClientErrorf(types.ReasonConfiguration,
			"No WebHDFS URL provided and none set in environment %s", types.EnvWebHDFSURL)
	}
	candidates, err := parseCandidates(raw, opts.HDFSUser, opts.WebHDFSPort)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTP()
	for _, cand := range candidates {
		c := &Client{base: cand.base(), user: cand.user, http: httpClient}
		if _, err := c.ListDir(ctx, "/"); err != nil {
			log.Debugf("WebHDFS candidate %s rejected: %v", cand.base(), err)
			continue
		}
		log.Infof("using WebHDFS at %s as %s", c.base, c.user)
		return c, nil
	}
	return nil, types.NewClientErrorf(types.ReasonConfiguration, "WebHDFS at %s appears misconfigured", raw)
}

func parseCandidates(raw, defaultUser string, defaultPort int) ([]candidate, error) {
	scheme, user, hosts, urlPort := "http", defaultUser, raw, 0

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, types.NewClientError(types.ReasonConfiguration, errors.Annotatef(err, "WebHDFS URL %q", raw))
		}
		scheme, hosts = u.Scheme, u.Hostname()
		if u.User != nil && u.User.Username() != "" {
			user = u.User.Username()
		}
		if p := u.Port(); p != "" {
			urlPort, _ = strconv.Atoi(p)
		}
	}

	var out []candidate
	for _, host := range strings.Split(hosts, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		var ports []int
		if urlPort != 0 {
			ports = append(ports, urlPort)
		}
		if h, p, found := strings.Cut(host, ":"); found {
			port, err := strconv.Atoi(p)
			if err != nil {
				return nil, types.NewClientErrorf(types.ReasonConfiguration, "bad port in WebHDFS host %q", host)
			}
			host = h
			ports = append(ports, port)
		}
		ports = append(ports, defaultPort)

		seen := make(map[int]bool)
		for _, port := range ports {
			if seen[port] {
				continue
			}
			seen[port] = true
			out = append(out, candidate{scheme: scheme, host: host, port: port, user: user})
		}
	}
	if len(out) == 0 {
		return nil, types.NewClientErrorf(types.ReasonConfiguration, "no hosts in WebHDFS URL %q", raw)
	}
	return out, nil
}

func (c *Client) URL() string {
	return c.base
}

func (c *Client) User() string {
	return c.user
}

// endpoint builds the URL of an operation, remote paths are always absolute.
func (c *Client) endpoint(remote, op string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("op", op)
	query.Set("user.name", c.user)
	return c.base + normalize(remote) + "?" + query.Encode()
}

func normalize(remote string) string {
	return utils.ParsePath(remote).String()
}

func (c *Client) Mkdir(ctx context.Context, remote string) error {
	var resp struct {
		Boolean bool `json:"boolean"`
	}
	u := c.endpoint(remote, "MKDIRS", nil)
	if err := c.doJSON(ctx, http.MethodPut, u, "creating directory", &resp); err != nil {
		return err
	}
	if !resp.Boolean {
		return types.NewServerErrorf("WebHDFS refused to create directory %s", normalize(remote))
	}
	return nil
}

/**
 * Write creates or overwrites the remote file with data. The name-node
 * redirects the upload to a data-node, after which the stored length is
 * checked against what was sent.
 */
func (c *Client) Write(ctx context.Context, remote string, data []byte) error {
	u := c.endpoint(remote, "CREATE", url.Values{"overwrite": {"true"}})

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return errors.Trace(err)
	}
	noRedirect := *c.http
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		return types.NewServerError(errors.Annotatef(err, "writing %s", remote))
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		return statusError(resp.StatusCode, "writing", u, body)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return types.NewServerErrorf("WebHDFS gave no data-node location for %s", normalize(remote))
	}

	if _, err := c.do(ctx, http.MethodPut, location, bytes.NewReader(data), http.StatusCreated, "writing"); err != nil {
		return err
	}

	status, err := c.Status(ctx, remote)
	if err != nil {
		return err
	}
	if status.Length != int64(len(data)) {
		return types.NewServerErrorf("wrote %d bytes to %s but %d are stored", len(data), normalize(remote), status.Length)
	}
	log.Debugf("wrote %d bytes to %s", len(data), normalize(remote))
	return nil
}

func (c *Client) Read(ctx context.Context, remote string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.endpoint(remote, "OPEN", nil), nil, http.StatusOK, "reading")
}

// ListDir returns the names of the entries of a remote directory, sorted.
func (c *Client) ListDir(ctx context.Context, remote string) ([]string, error) {
	var resp struct {
		FileStatuses struct {
			FileStatus []FileStatus `json:"FileStatus"`
		} `json:"FileStatuses"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(remote, "LISTSTATUS", nil), "listing", &resp); err != nil {
		return nil, err
	}
	if resp.FileStatuses.FileStatus == nil {
		return nil, types.NewServerErrorf("malformed response: no FileStatuses listing %s", normalize(remote))
	}
	names := make([]string, 0, len(resp.FileStatuses.FileStatus))
	for _, s := range resp.FileStatuses.FileStatus {
		names = append(names, s.PathSuffix)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) Status(ctx context.Context, remote string) (*FileStatus, error) {
	var resp struct {
		FileStatus *FileStatus `json:"FileStatus"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(remote, "GETFILESTATUS", nil), "checking", &resp); err != nil {
		return nil, err
	}
	if resp.FileStatus == nil {
		return nil, types.NewServerErrorf("malformed response: no FileStatus for %s", normalize(remote))
	}
	return resp.FileStatus, nil
}

func (c *Client) CopyFromLocal(ctx context.Context, localPath, remote string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewClientErrorf(types.ReasonNotFound, "local file %s does not exist", localPath)
		}
		return errors.Annotatef(err, "reading %s", localPath)
	}
	return c.Write(ctx, remote, data)
}

func (c *Client) CopyToLocal(ctx context.Context, remote, localPath string) error {
	data, err := c.Read(ctx, remote)
	if err != nil {
		return err
	}
	return errors.Annotatef(os.WriteFile(localPath, data, 0o644), "writing %s", localPath)
}

func (c *Client) doJSON(ctx context.Context, method, u, doing string, out any) error {
	body, err := c.do(ctx, method, u, nil, http.StatusOK, doing)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return types.NewServerError(errors.Annotatef(err, "malformed response %q", string(body)))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, payload io.Reader, expect int, doing string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, errors.Annotatef(err, "building request %s %s", method, u)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewServerError(errors.Annotatef(err, "%s %s", doing, u))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewServerError(errors.Annotatef(err, "reading response of %s", u))
	}
	if resp.StatusCode != expect {
		return nil, statusError(resp.StatusCode, doing, u, body)
	}
	return body, nil
}

func statusError(status int, doing, u string, body []byte) error {
	if status == http.StatusNotFound {
		return types.NewClientErrorf(types.ReasonNotFound, "%s %s: %s", doing, u, string(body))
	}
	return types.StatusError(status, doing, u, string(body))
}
