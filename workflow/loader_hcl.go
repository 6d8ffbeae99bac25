package workflow

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/juju/errors"
	"github.com/warriorguo/oozie/types"
	"github.com/zclconf/go-cty/cty"
)

const hclProperties = "properties"

type hclRoot struct {
	Name    string       `hcl:"name,optional"`
	End     string       `hcl:"end,optional"`
	Actions []*hclAction `hcl:"action,block"`
	Kills   []*hclKill   `hcl:"kill,block"`
}

type hclAction struct {
	Name   string   `hcl:"name,label"`
	Params hcl.Body `hcl:",remain"`
}

type hclKill struct {
	Name    string `hcl:"name,label"`
	Message string `hcl:"message,optional"`
}

/**
 * LoadHCL builds a workflow from an HCL definition:
 *
 *	name = "wordcount"
 *	end  = "done"
 *
 *	action "count" {
 *	  template = "map-reduce"
 *	  mapper   = "/bin/cat"
 *	  reducer  = "/usr/bin/wc"
 *	  ok       = "done"
 *
 *	  properties = {
 *	    "mapred.reduce.tasks" = 2
 *	  }
 *	}
 *
 *	kill "fail" {}
 */
func LoadHCL(b []byte, filename string) (*Workflow, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(b, filename)
	if diags.HasErrors() {
		return nil, types.NewClientError(types.ReasonMalformed, errors.Annotatef(diags, "parsing %s", filename))
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, types.NewClientError(types.ReasonMalformed, errors.Annotatef(diags, "decoding %s", filename))
	}

	d := &Definition{Name: root.Name, End: root.End}
	for _, a := range root.Actions {
		params, err := hclParams(a.Params)
		if err != nil {
			return nil, errors.Annotatef(err, "action %q", a.Name)
		}
		params[attrName] = a.Name
		d.Actions = append(d.Actions, params)
	}
	for _, k := range root.Kills {
		d.Kills = append(d.Kills, KillDefinition{Name: k.Name, Message: k.Message})
	}
	return d.Build()
}

func hclParams(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, types.NewClientError(types.ReasonMalformed, diags)
	}
	params := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, types.NewClientError(types.ReasonMalformed, errors.Annotatef(diags, "attribute %s", name))
		}
		goValue, err := ctyToGo(v)
		if err != nil {
			return nil, errors.Annotatef(err, "attribute %s", name)
		}
		// properties = { ... } carries keys that are not valid identifiers
		if props, ok := goValue.(map[string]any); ok && name == hclProperties {
			for k, pv := range props {
				params[k] = pv
			}
			continue
		}
		params[name] = goValue
	}
	return params, nil
}

func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, types.NewClientErrorf(types.ReasonMalformed, "value is not known")
	}
	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return v.AsString(), nil
	case t.Equals(cty.Bool):
		return v.True(), nil
	case t.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case t.IsMapType() || t.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = e
		}
		return out, nil
	}
	return nil, types.NewClientErrorf(types.ReasonMalformed, "unsupported value type %s", t.FriendlyName())
}
