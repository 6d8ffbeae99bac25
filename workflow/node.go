package workflow

import (
	"github.com/warriorguo/oozie/types"
)

// Kind is the variant of a workflow node.
type Kind int

const (
	KindElement Kind = iota
	KindWorkflow
	KindStart
	KindAction
	KindOk
	KindError
	KindKill
	KindEnd
	KindBody
	KindConfiguration
)

const (
	TagWorkflow      = "workflow-app"
	TagStart         = "start"
	TagAction        = "action"
	TagOk            = "ok"
	TagError         = "error"
	TagKill          = "kill"
	TagEnd           = "end"
	TagConfiguration = "configuration"
	TagMessage       = "message"
)

const (
	attrName = "name"
	attrTo   = "to"
)

func (k Kind) String() string {
	switch k {
	case KindWorkflow:
		return "workflow"
	case KindStart:
		return "start"
	case KindAction:
		return "action"
	case KindOk:
		return "ok"
	case KindError:
		return "error"
	case KindKill:
		return "kill"
	case KindEnd:
		return "end"
	case KindBody:
		return "body"
	case KindConfiguration:
		return "configuration"
	}
	return "element"
}

/**
 * AttrFilter restricts which parameter keys become attributes of a node.
 * A key passes when Allow is nil or lists it, and Deny does not list it.
 * Keys that do not pass are dropped silently.
 */
type AttrFilter struct {
	Allow []string
	Deny  []string
}

func (f AttrFilter) Permits(key string) bool {
	for _, k := range f.Deny {
		if k == key {
			return false
		}
	}
	if f.Allow == nil {
		return true
	}
	for _, k := range f.Allow {
		if k == key {
			return true
		}
	}
	return false
}

var (
	workflowFilter       = AttrFilter{Deny: []string{"actions", "template"}}
	actionFilter         = AttrFilter{Deny: []string{"input", "output", "template", TagOk, TagError}}
	templateActionFilter = AttrFilter{Allow: []string{attrName, "retry-max", "retry-interval", "cred"}}
)

// Attr is a node attribute. A nil Value is an attribute explicitly set to null.
type Attr struct {
	Key   string
	Value *string
}

// Node is one element of the workflow document.
type Node struct {
	Kind Kind
	Tag  string
	Text string
	// ActionKind names the template an action was expanded from, empty for generic actions.
	ActionKind string

	attrs    []Attr
	children []*Node
}

func newNode(kind Kind, tag string) *Node {
	return &Node{Kind: kind, Tag: tag}
}

// NewElement returns a plain element holding text.
func NewElement(tag, text string) *Node {
	n := newNode(KindElement, tag)
	n.Text = text
	return n
}

func NewStart(to string) *Node {
	n := newNode(KindStart, TagStart)
	n.Set(attrTo, to)
	return n
}

func NewOk(to string) *Node {
	n := newNode(KindOk, TagOk)
	n.Set(attrTo, to)
	return n
}

func NewError(to string) *Node {
	n := newNode(KindError, TagError)
	n.Set(attrTo, to)
	return n
}

func NewKill(name, message string) *Node {
	n := newNode(KindKill, TagKill)
	n.Set(attrName, name)
	n.Append(NewElement(TagMessage, message))
	return n
}

func NewEnd(name string) *Node {
	n := newNode(KindEnd, TagEnd)
	n.Set(attrName, name)
	return n
}

// NewAction builds a generic action without a nested body.
func NewAction(params types.Data) *Node {
	n := newNode(KindAction, TagAction)
	n.SetAttributes(params, actionFilter)
	return n
}

// SetAttributes copies every permitted key of params, in sorted key order.
func (n *Node) SetAttributes(params types.Data, filter AttrFilter) {
	for _, k := range params.Keys() {
		if !filter.Permits(k) {
			continue
		}
		v := params[k]
		if v == nil {
			n.SetNull(k)
			continue
		}
		n.Set(k, flatten(v))
	}
}

func (n *Node) Set(key, value string) {
	n.setAttr(key, &value)
}

// SetNull sets key explicitly to null, which is different from not having it.
func (n *Node) SetNull(key string) {
	n.setAttr(key, nil)
}

func (n *Node) setAttr(key string, value *string) {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
}

func (n *Node) Unset(key string) {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Get returns the attribute value; a null attribute is reported as ("", true).
func (n *Node) Get(key string) (string, bool) {
	v, exists := n.Lookup(key)
	if !exists || v == nil {
		return "", exists
	}
	return *v, true
}

func (n *Node) Lookup(key string) (*string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

func (n *Node) IsNull(key string) bool {
	v, exists := n.Lookup(key)
	return exists && v == nil
}

func (n *Node) Attrs() []Attr {
	return n.attrs
}

func (n *Node) Name() string {
	name, _ := n.Get(attrName)
	return name
}

// Target is the node a start or transition points to.
func (n *Node) Target() (string, bool) {
	return n.Get(attrTo)
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i-th child; negative indexes count from the end.
func (n *Node) Child(i int) *Node {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Append(child ...*Node) {
	n.children = append(n.children, child...)
}

// Insert places child before position index, clamping index into range.
func (n *Node) Insert(index int, child *Node) {
	if index < 0 {
		index = 0
	}
	if index >= len(n.children) {
		n.children = append(n.children, child)
		return
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) Remove(child *Node) bool {
	i := n.IndexOf(child)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	return true
}

// EachChildOfTag visits direct children with the tag in order until visit returns false.
func (n *Node) EachChildOfTag(tag string, visit func(child *Node) bool) {
	for _, c := range n.children {
		if c.Tag != tag {
			continue
		}
		if !visit(c) {
			return
		}
	}
}

func (n *Node) ChildrenOfTag(tag string) []*Node {
	out := make([]*Node, 0)
	n.EachChildOfTag(tag, func(child *Node) bool {
		out = append(out, child)
		return true
	})
	return out
}

func (n *Node) CountOfTag(tag string) int {
	count := 0
	n.EachChildOfTag(tag, func(*Node) bool {
		count++
		return true
	})
	return count
}

// FirstOfTag returns the first direct child with the tag.
func (n *Node) FirstOfTag(tag string) *Node {
	var found *Node
	n.EachChildOfTag(tag, func(child *Node) bool {
		found = child
		return false
	})
	return found
}

// Walk visits n and all its descendants depth first in document order.
func (n *Node) Walk(visit func(node *Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}
