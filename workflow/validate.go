package workflow

import (
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
)

const malformedPrefix = "Workflow appears malformed: "

func malformed(format string, args ...interface{}) error {
	return types.NewClientErrorf(types.ReasonInvalidWorkflow, malformedPrefix+format, args...)
}

/**
 * Validate checks the structural contract of the service and returns a
 * ClientError naming the first broken rule. It never modifies the workflow.
 */
func (wf *Workflow) Validate() error {
	switch n := wf.CountOfTag(TagStart); {
	case n < 1:
		return malformed("no start node")
	case n > 1:
		return malformed("more than one start node")
	}
	if wf.CountOfTag(TagAction) < 1 {
		return malformed("no action nodes")
	}
	switch n := wf.CountOfTag(TagEnd); {
	case n < 1:
		return malformed("no end node")
	case n > 1:
		return malformed("more than one end node")
	}

	if wf.Child(0).Tag != TagStart {
		return malformed("start node not first")
	}
	if wf.Child(-1).Tag != TagEnd {
		return malformed("end node not last")
	}

	for _, action := range wf.ChildrenOfTag(TagAction) {
		if err := validateTransitions(action); err != nil {
			return err
		}
	}

	if missing := utils.Difference(wf.Targets(), wf.NodeNames()); len(missing) > 0 {
		return malformed("some referenced nodes do not exist: %v", missing)
	}

	seen := make(map[string]bool)
	for _, name := range wf.NodeNames() {
		if seen[name] {
			return malformed("duplicate node name %q", name)
		}
		seen[name] = true
	}
	return nil
}

func validateTransitions(action *Node) error {
	switch n := action.CountOfTag(TagOk); {
	case n < 1:
		return malformed("no ok node in action %q", action.Name())
	case n > 1:
		return malformed("more than one ok node in action %q", action.Name())
	}
	switch n := action.CountOfTag(TagError); {
	case n < 1:
		return malformed("no error node in action %q", action.Name())
	case n > 1:
		return malformed("more than one error node in action %q", action.Name())
	}
	if action.Child(-2).Tag != TagOk {
		return malformed("ok node not second to last in action %q", action.Name())
	}
	if action.Child(-1).Tag != TagError {
		return malformed("error node not last in action %q", action.Name())
	}
	return nil
}

// Check repairs the workflow when repair is set, then validates it.
func (wf *Workflow) Check(repair bool) error {
	if repair {
		wf.Repair()
	}
	return wf.Validate()
}
