package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warriorguo/oozie/types"
)

const definition = `
name: wordcount
actions:
  - name: count
    template: map-reduce
    mapper: /bin/cat
    reducer: /usr/bin/wc
`

func writeDefinition(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunDryRun(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-f", writeDefinition(t, "wf.yaml", definition), "-dry-run"}))

	s := out.String()
	assert.Contains(t, s, `<workflow-app name="wordcount" xmlns="uri:oozie:workflow:0.2">`)
	assert.Contains(t, s, `<start to="count"></start>`)
	assert.Contains(t, s, `<end name="end"></end>`)
}

func TestRunDOT(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-dot", "-f", writeDefinition(t, "wf.yaml", definition)}))
	assert.Contains(t, out.String(), `"n_count" -> "n_end"`)
}

func TestRunNoRepair(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"-no-repair", "-dry-run", "-f", writeDefinition(t, "wf.yaml", definition)})
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonInvalidWorkflow, reason)
}

func TestRunBadStoreDSN(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"-store-dsn", "port=abc", "-f", writeDefinition(t, "wf.yaml", definition)})
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonConfiguration, reason)
}

func TestParse(t *testing.T) {
	c, _, err := parse(&bytes.Buffer{}, []string{"-f", "wf.hcl", "-D", "output=/data/out", "-D", "queue=etl", "-start=false"})
	require.NoError(t, err)
	assert.Equal(t, properties{"output": "/data/out", "queue": "etl"}, c.props)
	assert.False(t, c.start)

	_, _, err = parse(&bytes.Buffer{}, []string{"-D", "novalue", "-f", "wf.hcl"})
	assert.Error(t, err)

	_, _, err = parse(&bytes.Buffer{}, nil)
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonConfiguration, reason)

	out := &bytes.Buffer{}
	_, shouldExit, err := parse(out, []string{"-h"})
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage: oozie-submit")
}

func TestRunMissingFile(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"-f", filepath.Join(t.TempDir(), "missing.yaml")})
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonNotFound, reason)
}
