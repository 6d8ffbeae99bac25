package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/workflow"
)

func TestEchoWorkflow(t *testing.T) {
	wf, err := echoWorkflow()
	require.NoError(t, err)
	assert.Equal(t, []string{actionName}, wf.ActionNames())

	b, err := wf.XML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "<mapper>/bin/cat</mapper>")
	assert.Contains(t, string(b), "<reducer>/bin/cat</reducer>")
	assert.Contains(t, string(b), `<ok to="end">`)
	assert.Equal(t, workflow.TemplateMapReduce, wf.Find(actionName).ActionKind)
}

func TestRunDOT(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-dot"}))
	assert.Contains(t, out.String(), "digraph D {")
	assert.Contains(t, out.String(), `"start" -> "n_echo"`)
}

func TestParse(t *testing.T) {
	c, shouldExit, err := parse(&bytes.Buffer{}, []string{"-url", "http://oozie:11000/oozie", "-wait=false", "-interval", "1s"})
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "http://oozie:11000/oozie", c.url)
	assert.False(t, c.wait)
	assert.Equal(t, "/tmp/oozie-echo", c.appPath)

	out := &bytes.Buffer{}
	_, shouldExit, err = parse(out, []string{"-h"})
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage: oozie-echo")

	_, _, err = parse(&bytes.Buffer{}, []string{"-nope"})
	assert.Error(t, err)
}

func TestParseRejectsZeroInterval(t *testing.T) {
	_, _, err := parse(&bytes.Buffer{}, []string{"-interval", "0"})
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonConfiguration, reason)

	_, _, err = parse(&bytes.Buffer{}, []string{"-wait=false", "-interval", "0"})
	assert.NoError(t, err)
}

func TestRunWithoutService(t *testing.T) {
	t.Setenv(types.EnvOozieURL, "")
	err := run(context.Background(), &bytes.Buffer{}, nil)
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonConfiguration, reason)
}
