package workflow

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/oozie/types"
	"gopkg.in/yaml.v3"
)

// Definition is a workflow described in a file rather than built in code.
type Definition struct {
	Name    string           `yaml:"name"`
	Actions []map[string]any `yaml:"actions"`
	Kills   []KillDefinition `yaml:"kills"`
	End     string           `yaml:"end"`
}

type KillDefinition struct {
	Name    string `yaml:"name"`
	Message string `yaml:"message"`
}

// Build appends the defined nodes to a new workflow, in definition order.
func (d *Definition) Build() (*Workflow, error) {
	params := types.Data{}
	if d.Name != "" {
		params.Set(attrName, d.Name)
	}
	wf, err := New(params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, a := range d.Actions {
		if _, err := wf.AppendAction(types.Data(a)); err != nil {
			return nil, errors.Annotatef(err, "action #%d", i+1)
		}
	}
	for _, k := range d.Kills {
		message := k.Message
		if message == "" {
			message = KillMessage
		}
		if _, err := wf.AppendKill(k.Name, message); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if d.End != "" {
		if _, err := wf.AppendEnd(d.End); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return wf, nil
}

/**
 * LoadYAML builds a workflow from a YAML definition:
 *
 *	name: wordcount
 *	actions:
 *	  - name: count
 *	    template: map-reduce
 *	    mapper: /bin/cat
 *	    reducer: /usr/bin/wc
 *	    ok: done
 *	kills:
 *	  - name: fail
 *	end: done
 */
func LoadYAML(b []byte) (*Workflow, error) {
	d := &Definition{}
	if err := yaml.Unmarshal(b, d); err != nil {
		return nil, types.NewClientError(types.ReasonMalformed, errors.Annotatef(err, "parsing workflow definition"))
	}
	return d.Build()
}

// LoadFile loads a .yaml, .yml, .hcl or .xml workflow file.
func LoadFile(path string) (*Workflow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewClientErrorf(types.ReasonNotFound, "workflow file %s does not exist", path)
		}
		return nil, errors.Annotatef(err, "reading %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return LoadYAML(b)
	case ".hcl":
		return LoadHCL(b, path)
	case ".xml":
		return Decode(bytes.NewReader(b))
	default:
		return nil, types.NewClientErrorf(types.ReasonMalformed, "unsupported workflow file type %q", ext)
	}
}
