package workflow

import (
	"strconv"

	"github.com/juju/errors"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
)

const (
	// Namespace is the workflow schema version documents are written against.
	Namespace = "uri:oozie:workflow:0.2"

	syntheticActionPrefix = "action-"
)

// Workflow is the ordered sequence of top level nodes submitted as one workflow-app.
type Workflow struct {
	*Node
}

/**
 * New creates an empty workflow. params become attributes of the workflow-app
 * element (typically "name"); an "actions" entry holding a list of parameter
 * maps is appended action by action.
 */
func New(params types.Data) (*Workflow, error) {
	if params == nil {
		params = types.Data{}
	}
	root := newNode(KindWorkflow, TagWorkflow)
	root.SetAttributes(params, workflowFilter)
	root.Set("xmlns", Namespace)
	wf := &Workflow{Node: root}

	actions, _ := params.GetSlice("actions")
	for i, a := range actions {
		p, err := toData(a)
		if err != nil {
			return nil, errors.Annotatef(err, "action #%d", i+1)
		}
		if _, err := wf.AppendAction(p); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return wf, nil
}

/**
 * AppendAction builds an action from params and appends it.
 * Without a "name" the action is called "action-N", N being one more than
 * the number of actions already present. The generated name is not skipped
 * past existing ones: after an explicit "action-2" the next unnamed action
 * of two is rejected as a duplicate. A known "template" expands into
 * a templated action, otherwise a generic action is built. "ok" and "error"
 * entries become the action's transitions.
 * Nothing is appended when an error is returned.
 */
func (wf *Workflow) AppendAction(params types.Data) (*Node, error) {
	p := types.Data{}
	for k, v := range params {
		p[k] = v
	}
	name, hasName := p.GetNonEmptyString(attrName)
	if !hasName {
		name = syntheticActionPrefix + strconv.Itoa(wf.CountOfTag(TagAction)+1)
		p.Set(attrName, name)
	}
	if wf.Find(name) != nil {
		return nil, types.NewClientErrorf(types.ReasonInvalidWorkflow, "duplicate node name %q", name)
	}

	var action *Node
	if template, exists := p.GetNonEmptyString("template"); exists {
		expand, known := templates[template]
		if !known {
			return nil, types.NewClientErrorf(types.ReasonConfiguration, "unknown action template %q", template)
		}
		var err error
		if action, err = expand(p); err != nil {
			return nil, errors.Trace(err)
		}
	} else {
		action = NewAction(p)
	}

	if to, exists := p.GetNonEmptyString(TagOk); exists {
		action.Append(NewOk(to))
	}
	if to, exists := p.GetNonEmptyString(TagError); exists {
		action.Append(NewError(to))
	}

	wf.Append(action)
	return action, nil
}

func (wf *Workflow) AppendStart(to string) *Node {
	n := NewStart(to)
	wf.Append(n)
	return n
}

func (wf *Workflow) AppendKill(name, message string) (*Node, error) {
	if wf.Find(name) != nil {
		return nil, types.NewClientErrorf(types.ReasonInvalidWorkflow, "duplicate node name %q", name)
	}
	n := NewKill(name, message)
	wf.Append(n)
	return n, nil
}

func (wf *Workflow) AppendEnd(name string) (*Node, error) {
	if wf.Find(name) != nil {
		return nil, types.NewClientErrorf(types.ReasonInvalidWorkflow, "duplicate node name %q", name)
	}
	n := NewEnd(name)
	wf.Append(n)
	return n, nil
}

func isNamed(n *Node) bool {
	return n.Tag == TagAction || n.Tag == TagKill || n.Tag == TagEnd
}

// Find returns the first action, kill or end node called name.
func (wf *Workflow) Find(name string) *Node {
	for _, c := range wf.Children() {
		if isNamed(c) && c.Name() == name {
			return c
		}
	}
	return nil
}

// ActionNames returns action names in definition order.
func (wf *Workflow) ActionNames() []string {
	names := make([]string, 0)
	wf.EachChildOfTag(TagAction, func(action *Node) bool {
		names = append(names, action.Name())
		return true
	})
	return names
}

// NodeNames returns the names of all action, kill and end nodes in document order.
func (wf *Workflow) NodeNames() []string {
	names := make([]string, 0)
	for _, c := range wf.Children() {
		if isNamed(c) {
			names = append(names, c.Name())
		}
	}
	return names
}

// AllOfTag returns every node below the workflow with the tag, in document order.
func (wf *Workflow) AllOfTag(tag string) []*Node {
	out := make([]*Node, 0)
	for _, c := range wf.Children() {
		c.Walk(func(n *Node) bool {
			if n.Tag == tag {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

/**
 * AllWithTarget returns every start and transition carrying a target, in
 * document order. A "to" attribute on any other node is plain content and
 * references nothing.
 */
func (wf *Workflow) AllWithTarget() []*Node {
	out := make([]*Node, 0)
	for _, c := range wf.Children() {
		c.Walk(func(n *Node) bool {
			if _, exists := n.Target(); exists && isEdge(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

func isEdge(n *Node) bool {
	return n.Kind == KindStart || n.Kind == KindOk || n.Kind == KindError
}

// Targets returns the distinct referenced node names, in document order.
func (wf *Workflow) Targets() []string {
	targets := make([]string, 0)
	for _, n := range wf.AllWithTarget() {
		to, _ := n.Target()
		targets = append(targets, to)
	}
	return utils.UniqueSlice(targets)
}

func targetsOfTag(wf *Workflow, tag string) []string {
	targets := make([]string, 0)
	for _, n := range wf.AllWithTarget() {
		if n.Tag == tag {
			to, _ := n.Target()
			targets = append(targets, to)
		}
	}
	return targets
}

func toData(v any) (types.Data, error) {
	switch m := v.(type) {
	case types.Data:
		return m, nil
	case map[string]any:
		return types.Data(m), nil
	case map[string]string:
		d := types.Data{}
		for k, s := range m {
			d[k] = s
		}
		return d, nil
	}
	return nil, types.NewClientErrorf(types.ReasonMalformed, "action parameters must be a mapping, got %T", v)
}
