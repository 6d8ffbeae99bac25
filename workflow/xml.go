package workflow

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/oozie/types"
	"github.com/warriorguo/oozie/utils"
)

// Encode writes the workflow as an indented workflow-app document.
func (wf *Workflow) Encode(w io.Writer) error {
	return encodeDocument(w, wf.Node)
}

func (wf *Workflow) XML() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wf.Encode(buf); err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

/**
 * JobConfiguration renders props as the <configuration> document the service
 * expects as a submission body. Properties are written in key order.
 */
func JobConfiguration(props map[string]string) ([]byte, error) {
	list := make([]Property, 0, len(props))
	for _, k := range utils.SortedKeys(props) {
		list = append(list, Property{k, props[k]})
	}
	buf := &bytes.Buffer{}
	if err := encodeDocument(buf, NewConfiguration(list...)); err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

func encodeDocument(w io.Writer, root *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Trace(err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encodeNode(enc, root); err != nil {
		return errors.Trace(err)
	}
	if err := enc.Flush(); err != nil {
		return errors.Trace(err)
	}
	_, err := io.WriteString(w, "\n")
	return errors.Trace(err)
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Tag}}
	for _, a := range n.attrs {
		value := ""
		if a.Value != nil {
			value = *a.Value
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Key}, Value: value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return errors.Annotatef(err, "encoding <%s>", n.Tag)
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return errors.Trace(err)
		}
	}
	for _, c := range n.children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return errors.Trace(enc.EncodeToken(start.End()))
}

/**
 * Decode parses a workflow-app document. Node kinds are assigned from the
 * tag and the position in the document, so the result can be repaired and
 * validated like a workflow built in code.
 */
func Decode(r io.Reader) (*Workflow, error) {
	dec := xml.NewDecoder(r)
	var (
		stack []*Node
		root  *Node
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.NewClientError(types.ReasonMalformed, errors.Annotatef(err, "parsing workflow"))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var parent *Node
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			} else if root != nil {
				return nil, types.NewClientErrorf(types.ReasonMalformed, "more than one root element")
			}
			n := newNode(kindOf(rawName(t.Name), parent), rawName(t.Name))
			for _, a := range t.Attr {
				n.Set(rawName(a.Name), a.Value)
			}
			if n.Kind == KindBody {
				parent.ActionKind = n.Tag
			}
			if parent != nil {
				parent.Append(n)
			} else {
				root = n
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, types.NewClientErrorf(types.ReasonMalformed, "unbalanced </%s>", rawName(t.Name))
			}
			if open := stack[len(stack)-1]; open.Tag != rawName(t.Name) {
				return nil, types.NewClientErrorf(types.ReasonMalformed, "</%s> closes <%s>", rawName(t.Name), open.Tag)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, types.NewClientErrorf(types.ReasonMalformed, "empty workflow document")
	}
	if len(stack) > 0 {
		return nil, types.NewClientErrorf(types.ReasonMalformed, "unclosed <%s>", stack[len(stack)-1].Tag)
	}
	if root.Kind != KindWorkflow {
		return nil, types.NewClientErrorf(types.ReasonMalformed, "root element is <%s>, expected <%s>", root.Tag, TagWorkflow)
	}
	trimText(root)
	return &Workflow{Node: root}, nil
}

func rawName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func kindOf(tag string, parent *Node) Kind {
	if parent == nil {
		if tag == TagWorkflow {
			return KindWorkflow
		}
		return KindElement
	}
	switch parent.Kind {
	case KindWorkflow:
		switch tag {
		case TagStart:
			return KindStart
		case TagAction:
			return KindAction
		case TagKill:
			return KindKill
		case TagEnd:
			return KindEnd
		}
	case KindAction:
		switch tag {
		case TagOk:
			return KindOk
		case TagError:
			return KindError
		}
		return KindBody
	case KindBody:
		if tag == TagConfiguration {
			return KindConfiguration
		}
	}
	return KindElement
}

func trimText(n *Node) {
	n.Text = strings.TrimSpace(n.Text)
	for _, c := range n.children {
		trimText(c)
	}
}
