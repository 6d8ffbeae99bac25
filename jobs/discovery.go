package jobs

import (
	"context"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/oozie/types"
)

const (
	NameNodeWhitelistKey   = "oozie.service.HadoopAccessorService.nameNode.whitelist"
	JobTrackerWhitelistKey = "oozie.service.HadoopAccessorService.jobTracker.whitelist"

	PropAppPath    = "oozie.wf.application.path"
	PropUser       = "user.name"
	PropNameNode   = "nameNode"
	PropJobTracker = "jobTracker"
)

// Cluster is what the service's configuration says about the cluster it drives.
type Cluster struct {
	NameNodes   []string
	JobTrackers []string
}

// NameNode returns the first name-node as an hdfs:// URI, or "".
func (c *Cluster) NameNode() string {
	if len(c.NameNodes) == 0 {
		return ""
	}
	return "hdfs://" + c.NameNodes[0]
}

func (c *Cluster) JobTracker() string {
	if len(c.JobTrackers) == 0 {
		return ""
	}
	return c.JobTrackers[0]
}

/**
 * WebHDFSURL lists every name-node host as a failover URL on port, e.g.
 * http://nn1,nn2:50070/
 */
func (c *Cluster) WebHDFSURL(port int) string {
	if len(c.NameNodes) == 0 {
		return ""
	}
	hosts := make([]string, 0, len(c.NameNodes))
	for _, nn := range c.NameNodes {
		host, _, _ := strings.Cut(nn, ":")
		hosts = append(hosts, host)
	}
	return "http://" + strings.Join(hosts, ",") + ":" + strconv.Itoa(port) + "/"
}

func DiscoverCluster(ctx context.Context, service types.JobService) (*Cluster, error) {
	conf, err := service.Config(ctx)
	if err != nil {
		return nil, errors.Annotatef(err, "discovering cluster")
	}
	return &Cluster{
		NameNodes:   splitList(conf[NameNodeWhitelistKey]),
		JobTrackers: splitList(conf[JobTrackerWhitelistKey]),
	}, nil
}

/**
 * ResolveWebHDFSURL returns the configured WebHDFS URL, or one built from the
 * name-nodes the service is allowed to use.
 */
func ResolveWebHDFSURL(ctx context.Context, opts *types.ClientOptions, service types.JobService) (string, error) {
	if u := opts.ResolvedWebHDFSURL(); u != "" {
		return u, nil
	}
	cluster, err := DiscoverCluster(ctx, service)
	if err != nil {
		return "", err
	}
	if u := cluster.WebHDFSURL(opts.WebHDFSPort); u != "" {
		return u, nil
	}
	return "", types.NewClientErrorf(types.ReasonConfiguration,
		"No WebHDFS URL provided, none set in environment %s and the service names no name-node", types.EnvWebHDFSURL)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
