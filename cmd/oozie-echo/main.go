package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/workflow"
)

const actionName = "echo"

type config struct {
	url        string
	webHDFSURL string
	appPath    string
	input      string
	output     string
	dot        bool
	wait       bool
	interval   time.Duration
	logLevel   string
}

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parse(out io.Writer, args []string) (*config, bool, error) {
	c := &config{}
	fs := flag.NewFlagSet("oozie-echo", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&c.url, "url", "", "service URL, defaults to $"+types.EnvOozieURL)
	fs.StringVar(&c.webHDFSURL, "webhdfs", "", "WebHDFS URL, defaults to $"+types.EnvWebHDFSURL+" then the service configuration")
	fs.StringVar(&c.appPath, "app-path", "/tmp/oozie-echo", "directory the workflow is staged in")
	fs.StringVar(&c.input, "input", "/tmp/oozie-echo/input", "input directory of the echo job")
	fs.StringVar(&c.output, "output", "/tmp/oozie-echo/output", "output directory of the echo job")
	fs.BoolVar(&c.dot, "dot", false, "print the workflow graph in DOT and exit")
	fs.BoolVar(&c.wait, "wait", true, "wait for the job to finish")
	fs.DurationVar(&c.interval, "interval", 5*time.Second, "status polling interval")
	fs.StringVar(&c.logLevel, "log-level", "info", "logrus level: debug, info, warning, error")
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: oozie-echo [flags]\n\nRuns a one-action map-reduce job copying its input with /bin/cat.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, err
	}
	if c.wait && c.interval <= 0 {
		return nil, false, types.NewClientErrorf(types.ReasonConfiguration, "-interval must be positive, got %s", c.interval)
	}
	return c, false, nil
}

// echoWorkflow is a repaired one-action workflow whose mapper and reducer are /bin/cat.
func echoWorkflow() (*workflow.Workflow, error) {
	wf, err := workflow.New(types.Data{
		"name": "oozie-echo",
		"actions": []any{
			map[string]any{
				"name":     actionName,
				"template": workflow.TemplateMapReduce,
				"mapper":   "/bin/cat",
				"reducer":  "/bin/cat",
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return wf, wf.Check(true)
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

	wf, err := echoWorkflow()
	if err != nil {
		return err
	}
	if c.dot {
		dot, err := workflow.RenderDOT(wf)
		if err != nil {
			return err
		}
		fmt.Fprint(out, dot)
		return nil
	}

	m, err := oozie.NewManager(
		types.WithContext(ctx),
		types.WithURL(c.url),
		types.WithWebHDFSURL(c.webHDFSURL),
	)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Healthcheck(ctx); err != nil {
		return err
	}
	jobID, err := m.Deploy(ctx, wf, c.appPath, map[string]string{
		actionName + "-input": c.input,
		"output":              c.output,
	})
	if err != nil {
		return err
	}
	if err := m.Start(ctx, jobID); err != nil {
		return err
	}
	fmt.Fprintf(out, "started job %s\n", jobID)
	if !c.wait {
		return nil
	}

	status, err := m.Wait(ctx, jobID, c.interval)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "job %s %s\n", jobID, status)
	if status != types.JobSucceeded {
		return errors.Errorf("job %s ended %s", jobID, status)
	}
	return nil
}
