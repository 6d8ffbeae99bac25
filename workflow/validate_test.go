package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warriorguo/oozie/types"
)

func validWorkflow(t *testing.T) *Workflow {
	wf := newTestWorkflow(t)
	wf.AppendStart("a")
	_, err := wf.AppendAction(types.Data{"name": "a", "ok": "end", "error": "kill"})
	require.Nil(t, err)
	_, err = wf.AppendKill("kill", "failed")
	require.Nil(t, err)
	_, err = wf.AppendEnd("end")
	require.Nil(t, err)
	return wf
}

func assertMalformed(t *testing.T, err error, message string) {
	t.Helper()
	require.NotNil(t, err)
	reason, ok := types.ClientReason(err)
	assert.True(t, ok)
	assert.Equal(t, types.ReasonInvalidWorkflow, reason)
	assert.Contains(t, err.Error(), "Workflow appears malformed: "+message)
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	assert.Nil(t, validWorkflow(t).Validate())
}

func TestValidateFirstFailure(t *testing.T) {
	wf := validWorkflow(t)
	wf.Remove(wf.Child(0))
	assertMalformed(t, wf.Validate(), "no start node")

	wf = validWorkflow(t)
	wf.AppendStart("a")
	assertMalformed(t, wf.Validate(), "more than one start node")

	wf = newTestWorkflow(t)
	wf.AppendStart("a")
	_, _ = wf.AppendEnd("end")
	assertMalformed(t, wf.Validate(), "no action nodes")

	wf = validWorkflow(t)
	wf.Remove(wf.Child(-1))
	assertMalformed(t, wf.Validate(), "no end node")

	wf = validWorkflow(t)
	wf.Append(NewEnd("other"))
	assertMalformed(t, wf.Validate(), "more than one end node")

	wf = validWorkflow(t)
	start := wf.Child(0)
	wf.Remove(start)
	wf.Insert(1, start)
	assertMalformed(t, wf.Validate(), "start node not first")

	wf = validWorkflow(t)
	end := wf.Child(-1)
	wf.Remove(end)
	wf.Insert(1, end)
	assertMalformed(t, wf.Validate(), "end node not last")
}

func TestValidateTransitions(t *testing.T) {
	wf := validWorkflow(t)
	action := wf.Find("a")
	action.Remove(action.Child(-2))
	assertMalformed(t, wf.Validate(), "no ok node")

	wf = validWorkflow(t)
	action = wf.Find("a")
	action.Append(NewError("kill"))
	assertMalformed(t, wf.Validate(), "more than one error node")

	wf = validWorkflow(t)
	action = wf.Find("a")
	action.Append(NewElement("x", ""))
	assertMalformed(t, wf.Validate(), "ok node not second to last")

	wf = validWorkflow(t)
	action = wf.Find("a")
	action.Insert(action.Len()-1, NewElement("x", ""))
	action.Remove(action.FirstOfTag(TagError))
	action.Insert(0, NewError("kill"))
	assertMalformed(t, wf.Validate(), "error node not last")
}

func TestValidateReferences(t *testing.T) {
	wf := validWorkflow(t)
	ok := wf.Find("a").Child(-2)
	ok.Set("to", "nowhere")
	assertMalformed(t, wf.Validate(), "some referenced nodes do not exist")
	assert.Contains(t, wf.Validate().Error(), "nowhere")
}

func TestValidateDuplicateNames(t *testing.T) {
	wf := validWorkflow(t)
	dup := NewAction(types.Data{"name": "a"})
	dup.Append(NewOk("end"), NewError("kill"))
	wf.Insert(2, dup)
	assertMalformed(t, wf.Validate(), `duplicate node name "a"`)
}

func TestValidateDoesNotRepair(t *testing.T) {
	wf := newTestWorkflow(t)
	_, err := wf.AppendAction(types.Data{})
	require.Nil(t, err)
	before := xmlOf(t, wf)

	assert.NotNil(t, wf.Validate())
	assert.Equal(t, before, xmlOf(t, wf))
	assert.NotNil(t, wf.Check(false))
	assert.Nil(t, wf.Check(true))
}
