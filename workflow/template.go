package workflow

import (
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/warriorguo/oozie/types"
)

const (
	TemplateMapReduce = "map-reduce"
	TemplateHive      = "hive"

	HiveNamespace = "uri:oozie:hive-action:0.2"

	// Placeholders substituted by the service at run time.
	jobTrackerExpr = `${wf:conf("jobTracker")}`
	nameNodeExpr   = `${wf:conf("nameNode")}`
	outputExpr     = `${wf:conf("output")}`

	PropInputDir  = "mapred.input.dir"
	PropOutputDir = "mapred.output.dir"
)

// TemplateFunc expands caller parameters into a complete action.
type TemplateFunc func(params types.Data) (*Node, error)

var templates = map[string]TemplateFunc{
	TemplateMapReduce: expandMapReduce,
	TemplateHive:      expandHive,
}

// Templates returns the known template names, sorted.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reservedParams never end up as configuration properties of a templated action.
var reservedParams = []string{
	attrName, "template", "input", "output", TagOk, TagError,
	"retry-max", "retry-interval", "cred",
}

// MapReduceParams are the keys the map-reduce template recognizes.
type MapReduceParams struct {
	Name    string
	Mapper  string
	Reducer string
	// Input defaults to ${wf:conf("<name>-input")}.
	Input string
	// Output defaults to ${wf:conf("output")}/<name>.
	Output string
	// Properties holds every other parameter, passed through as configuration.
	Properties types.Data
}

func parseMapReduceParams(params types.Data) (*MapReduceParams, error) {
	p := &MapReduceParams{}
	p.Name, _ = params.GetString(attrName)
	var exists bool
	if p.Mapper, exists = params.GetNonEmptyString("mapper"); !exists {
		return nil, types.NewClientErrorf(types.ReasonConfiguration, "map-reduce action %q requires a mapper", p.Name)
	}
	if p.Reducer, exists = params.GetNonEmptyString("reducer"); !exists {
		return nil, types.NewClientErrorf(types.ReasonConfiguration, "map-reduce action %q requires a reducer", p.Name)
	}
	p.Input, p.Output = ioDirs(params, p.Name)
	p.Properties = params.Without(append(reservedParams, "mapper", "reducer")...)
	return p, nil
}

// HiveParams are the keys the hive template recognizes.
type HiveParams struct {
	Name   string
	Script string
	Input  string
	Output string
	// Params become <param>KEY=VALUE</param> entries of the script.
	Params     map[string]string
	Properties types.Data
}

func parseHiveParams(params types.Data) (*HiveParams, error) {
	p := &HiveParams{}
	p.Name, _ = params.GetString(attrName)
	var exists bool
	if p.Script, exists = params.GetNonEmptyString("script"); !exists {
		return nil, types.NewClientErrorf(types.ReasonConfiguration, "hive action %q requires a script", p.Name)
	}
	p.Input, p.Output = ioDirs(params, p.Name)
	p.Params, _ = params.GetStringMapString("params")
	p.Properties = params.Without(append(reservedParams, "script", "params")...)
	return p, nil
}

func ioDirs(params types.Data, name string) (string, string) {
	input, exists := params.GetNonEmptyString("input")
	if !exists {
		input = `${wf:conf("` + name + `-input")}`
	}
	output, exists := params.GetNonEmptyString("output")
	if !exists {
		output = outputExpr + "/" + name
	}
	return input, output
}

// newTemplateAction builds the outer action and its body carrying the cluster placeholders.
func newTemplateAction(template string, params types.Data, bodyTag string) (*Node, *Node) {
	action := newNode(KindAction, TagAction)
	action.ActionKind = template
	action.SetAttributes(params, templateActionFilter)

	body := newNode(KindBody, bodyTag)
	body.Append(NewElement("job-tracker", jobTrackerExpr))
	body.Append(NewElement("name-node", nameNodeExpr))
	action.Append(body)
	return action, body
}

func expandMapReduce(params types.Data) (*Node, error) {
	p, err := parseMapReduceParams(params)
	if err != nil {
		return nil, err
	}
	action, body := newTemplateAction(TemplateMapReduce, params, TemplateMapReduce)

	streaming := NewElement("streaming", "")
	streaming.Append(NewElement("mapper", p.Mapper))
	streaming.Append(NewElement("reducer", p.Reducer))
	body.Append(streaming)

	props := []Property{
		{PropInputDir, p.Input},
		{PropOutputDir, p.Output},
	}
	props = append(props, Properties(p.Properties)...)
	body.Append(NewConfiguration(props...))
	return action, nil
}

func expandHive(params types.Data) (*Node, error) {
	p, err := parseHiveParams(params)
	if err != nil {
		return nil, err
	}
	action, body := newTemplateAction(TemplateHive, params, TemplateHive)
	body.Set("xmlns", HiveNamespace)

	if len(p.Properties) > 0 {
		body.Append(NewConfiguration(Properties(p.Properties)...))
	}
	body.Append(NewElement("script", p.Script))
	body.Append(NewElement("param", "INPUT="+p.Input))
	body.Append(NewElement("param", "OUTPUT="+p.Output))
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		body.Append(NewElement("param", k+"="+p.Params[k]))
	}
	return action, nil
}

// Property is one name/value entry of a configuration block.
type Property struct {
	Key   string
	Value string
}

// Properties flattens params into properties in sorted key order.
func Properties(params types.Data) []Property {
	props := make([]Property, 0, len(params))
	for _, k := range params.Keys() {
		props = append(props, Property{k, flatten(params[k])})
	}
	return props
}

func NewConfiguration(props ...Property) *Node {
	conf := newNode(KindConfiguration, TagConfiguration)
	for _, prop := range props {
		p := NewElement("property", "")
		p.Append(NewElement("name", prop.Key))
		p.Append(NewElement("value", prop.Value))
		conf.Append(p)
	}
	return conf
}

// ConfigurationProperties reads the properties back out of a configuration node.
func ConfigurationProperties(conf *Node) []Property {
	props := make([]Property, 0, conf.Len())
	conf.EachChildOfTag("property", func(p *Node) bool {
		prop := Property{}
		if n := p.FirstOfTag("name"); n != nil {
			prop.Key = n.Text
		}
		if v := p.FirstOfTag("value"); v != nil {
			prop.Value = v.Text
		}
		props = append(props, prop)
		return true
	})
	return props
}

// flatten renders a parameter value the way configuration files expect it.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	case []string:
		return strings.Join(t, " ")
	case []byte:
		return string(t)
	}
	// sequences of any element type are flattened element by element
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, flatten(rv.Index(i).Interface()))
		}
		return strings.Join(parts, " ")
	}
	return cast.ToString(v)
}
