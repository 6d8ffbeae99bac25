package workflow

import (
	"fmt"
	"strings"
)

// RenderDOT returns the workflow graph in graphviz DOT form.
func RenderDOT(wf *Workflow) (string, error) {
	renderer := newRenderer()
	return renderer.generateDOT(wf)
}

func newRenderer() *dotRenderer {
	return &dotRenderer{&strings.Builder{}}
}

type dotRenderer struct {
	sb *strings.Builder
}

func (d *dotRenderer) generateDOT(wf *Workflow) (string, error) {
	d.write("digraph D {")
	for _, n := range wf.Children() {
		switch n.Kind {
		case KindStart:
			d.write("%s [label=%s shape=\"circle\"]", startID, quoteString(TagStart))
			if to, exists := n.Target(); exists {
				d.write("%s -> %s", startID, idString(to))
			}

		case KindAction:
			d.drawAction(n)

		case KindKill:
			d.write("%s [label=%s shape=\"octagon\" style=\"filled\" color=\"red\" comment=\"%s\"]",
				idString(n.Name()), quoteString(n.Name()), killComment(n))

		case KindEnd:
			d.write("%s [label=%s shape=\"doublecircle\"]", idString(n.Name()), quoteString(n.Name()))
		}
	}
	d.write("label=%s", quoteString(wf.Node.Name()))
	d.write("}")
	return d.sb.String(), nil
}

func (d *dotRenderer) drawAction(action *Node) {
	label := action.Name()
	if action.ActionKind != "" {
		label += "\\n(" + action.ActionKind + ")"
	}
	d.write("%s [label=%s shape=\"record\"]", idString(action.Name()), quoteString(label))

	action.EachChildOfTag(TagOk, func(ok *Node) bool {
		to, _ := ok.Target()
		d.write("%s -> %s [label=\"ok\" color=\"green\"]", idString(action.Name()), idString(to))
		return true
	})
	action.EachChildOfTag(TagError, func(e *Node) bool {
		to, _ := e.Target()
		d.write("%s -> %s [label=\"error\" color=\"red\"]", idString(action.Name()), idString(to))
		return true
	})
}

func killComment(kill *Node) string {
	if msg := kill.FirstOfTag(TagMessage); msg != nil {
		return formatNL(addSlashes(msg.Text))
	}
	return ""
}

func (d *dotRenderer) write(format string, s ...any) {
	d.sb.WriteString(fmt.Sprintf(format+"\n", s...))
}

var (
	slashesToken = []string{"\\", "\"", "'", " "}
)

func addSlashes(s string) string {
	for _, token := range slashesToken {
		s = strings.ReplaceAll(s, token, "\\"+token)
	}
	return s
}

func formatNL(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func quoteString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

// startID never clashes with idString, whose ids all begin with n_.
const startID = `"start"`

var idEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// idString quotes the node name instead of rewriting it, so distinct names keep distinct ids.
func idString(s string) string {
	return `"n_` + idEscaper.Replace(s) + `"`
}
