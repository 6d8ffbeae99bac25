package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie"
	"github.com/warriorguo/oozie/store/postgres"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/workflow"
)

// properties collects repeated -D key=value flags.
type properties map[string]string

func (p properties) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (p properties) Set(s string) error {
	k, v, found := strings.Cut(s, "=")
	if !found || k == "" {
		return errors.Errorf("expected key=value, got %q", s)
	}
	p[k] = v
	return nil
}

type config struct {
	file     string
	url      string
	webHDFS  string
	appPath  string
	storeDSN string
	props    properties
	dryRun   bool
	dot      bool
	noRepair bool
	start    bool
	wait     time.Duration
	logLevel string
}

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parse(out io.Writer, args []string) (*config, bool, error) {
	c := &config{props: properties{}}
	fs := flag.NewFlagSet("oozie-submit", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&c.file, "f", "", "workflow definition: .yaml, .yml, .hcl or .xml")
	fs.StringVar(&c.url, "url", "", "service URL, defaults to $"+types.EnvOozieURL)
	fs.StringVar(&c.webHDFS, "webhdfs", "", "WebHDFS URL, defaults to $"+types.EnvWebHDFSURL+" then the service configuration")
	fs.StringVar(&c.appPath, "app-path", "", "directory the workflow is staged in, defaults to /tmp/<workflow name>")
	fs.StringVar(&c.storeDSN, "store-dsn", "", "keep job records in PostgreSQL, e.g. \"host=db dbname=oozie\"")
	fs.Var(c.props, "D", "job property key=value, may be repeated")
	fs.BoolVar(&c.dryRun, "dry-run", false, "print the workflow XML instead of submitting it")
	fs.BoolVar(&c.dot, "dot", false, "print the workflow graph in DOT instead of submitting it")
	fs.BoolVar(&c.noRepair, "no-repair", false, "validate the workflow as written")
	fs.BoolVar(&c.start, "start", true, "start the job once submitted")
	fs.DurationVar(&c.wait, "wait", 0, "poll the job at this interval until it finishes, 0 to return at once")
	fs.StringVar(&c.logLevel, "log-level", "info", "logrus level: debug, info, warning, error")
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: oozie-submit -f FILE [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, err
	}
	if c.file == "" {
		return nil, false, types.NewClientErrorf(types.ReasonConfiguration, "-f is required")
	}
	return c, false, nil
}

func run(ctx context.Context, out io.Writer, args []string) error {
	c, shouldExit, err := parse(out, args)
	if err != nil || shouldExit {
		return err
	}
	level, err := log.ParseLevel(c.logLevel)
	if err != nil {
		return errors.Annotatef(err, "-log-level")
	}
	log.SetLevel(level)

	wf, err := workflow.LoadFile(c.file)
	if err != nil {
		return err
	}
	if err := wf.Check(!c.noRepair); err != nil {
		return err
	}

	switch {
	case c.dot:
		dot, err := workflow.RenderDOT(wf)
		if err != nil {
			return err
		}
		fmt.Fprint(out, dot)
		return nil
	case c.dryRun:
		return wf.Encode(out)
	}

	opts := []types.ClientOption{
		types.WithContext(ctx),
		types.WithURL(c.url),
		types.WithWebHDFSURL(c.webHDFS),
	}
	if c.noRepair {
		opts = append(opts, types.DisableRepair())
	}
	if c.storeDSN != "" {
		pgConfig, err := postgres.ParseDSN(c.storeDSN)
		if err != nil {
			return types.NewClientError(types.ReasonConfiguration, errors.Annotatef(err, "-store-dsn"))
		}
		opts = append(opts, types.WithPostgresConfig(pgConfig))
	}
	m, err := oozie.NewManager(opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	appPath := c.appPath
	if appPath == "" {
		appPath = path.Join("/tmp", wf.Node.Name())
	}
	jobID, err := m.Deploy(ctx, wf, appPath, c.props)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submitted job %s\n", jobID)
	if !c.start {
		return nil
	}
	if err := m.Start(ctx, jobID); err != nil {
		return err
	}
	if c.wait <= 0 {
		return nil
	}

	status, err := m.Wait(ctx, jobID, c.wait)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "job %s %s\n", jobID, status)
	if status != types.JobSucceeded {
		return errors.Errorf("job %s ended %s", jobID, status)
	}
	return nil
}
