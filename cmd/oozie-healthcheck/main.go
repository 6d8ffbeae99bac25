package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/oozie"
	"github.com/warriorguo/oozie/types"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run checks the service named by the first argument, or OOZIE_URL.
func run(ctx context.Context, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("oozie-healthcheck", flag.ContinueOnError)
	fs.SetOutput(out)
	logLevel := fs.String("log-level", "warning", "logrus level: debug, info, warning, error")
	apiVersion := fs.String("api-version", "v1", "REST API version")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: oozie-healthcheck [flags] [URL]\n\nURL defaults to $%s.\n\n", types.EnvOozieURL)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		return errors.Annotatef(err, "-log-level")
	}
	log.SetLevel(level)

	opts := []types.ClientOption{types.WithContext(ctx), types.WithAPIVersion(*apiVersion)}
	if fs.NArg() > 0 {
		opts = append(opts, types.WithURL(fs.Arg(0)))
	}
	c, err := oozie.NewClient(opts...)
	if err != nil {
		return err
	}
	if err := c.Healthcheck(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "OK: %s\n", c.URL())
	return nil
}
