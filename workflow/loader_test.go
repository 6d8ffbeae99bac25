package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warriorguo/oozie/types"
)

const yamlDefinition = `
name: wordcount
actions:
  - name: count
    template: map-reduce
    mapper: /bin/cat
    reducer: /usr/bin/wc
    mapred.reduce.tasks: 2
    ok: done
  - name: cleanup
    retry-max: 3
kills:
  - name: fail
end: done
`

const hclDefinition = `
name = "wordcount"
end  = "done"

action "count" {
  template            = "map-reduce"
  mapper              = "/bin/cat"
  reducer             = "/usr/bin/wc"
  ok                  = "done"

  properties = {
    "mapred.reduce.tasks" = 2
  }
}

action "cleanup" {
  retry-max = 3
}

kill "fail" {}
`

func assertWordcount(t *testing.T, wf *Workflow) {
	assert.Equal(t, "wordcount", wf.Node.Name())
	assert.Equal(t, []string{"count", "cleanup"}, wf.ActionNames())

	count := wf.Find("count")
	require.NotNil(t, count)
	assert.Equal(t, TemplateMapReduce, count.ActionKind)
	to, _ := count.FirstOfTag(TagOk).Target()
	assert.Equal(t, "done", to)
	props := ConfigurationProperties(count.Child(0).FirstOfTag(TagConfiguration))
	assert.Contains(t, props, Property{"mapred.reduce.tasks", "2"})

	retry, _ := wf.Find("cleanup").Get("retry-max")
	assert.Equal(t, "3", retry)

	require.Nil(t, wf.Check(true))
	assert.Equal(t, KindKill, wf.Find("fail").Kind)
	assert.Equal(t, "done", wf.Child(-1).Name())
	// the declared kill becomes the error target
	to, _ = wf.Find("cleanup").FirstOfTag(TagError).Target()
	assert.Equal(t, "fail", to)
}

func TestLoadYAML(t *testing.T) {
	wf, err := LoadYAML([]byte(yamlDefinition))
	require.Nil(t, err)
	assertWordcount(t, wf)
}

func TestLoadYAMLMalformed(t *testing.T) {
	_, err := LoadYAML([]byte("actions: [unclosed"))
	assert.Equal(t, types.ReasonMalformed, reasonOf(err))

	_, err = LoadYAML([]byte("actions:\n  - template: map-reduce\n"))
	assert.Equal(t, types.ReasonConfiguration, reasonOf(err))
}

func TestLoadHCL(t *testing.T) {
	wf, err := LoadHCL([]byte(hclDefinition), "wordcount.hcl")
	require.Nil(t, err)
	assertWordcount(t, wf)
}

func TestLoadHCLMalformed(t *testing.T) {
	_, err := LoadHCL([]byte(`action "a" {`), "broken.hcl")
	assert.Equal(t, types.ReasonMalformed, reasonOf(err))

	_, err = LoadHCL([]byte(`unknown = 1`), "unknown.hcl")
	assert.Equal(t, types.ReasonMalformed, reasonOf(err))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.Nil(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	wf, err := LoadFile(write("wf.yml", yamlDefinition))
	require.Nil(t, err)
	assertWordcount(t, wf)

	wf, err = LoadFile(write("wf.hcl", hclDefinition))
	require.Nil(t, err)
	assertWordcount(t, wf)

	encoded := xmlOf(t, wordcount(t))
	wf, err = LoadFile(write("wf.xml", encoded))
	require.Nil(t, err)
	assert.Equal(t, encoded, xmlOf(t, wf))

	_, err = LoadFile(write("wf.json", "{}"))
	assert.Equal(t, types.ReasonMalformed, reasonOf(err))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, types.ReasonNotFound, reasonOf(err))
}

func reasonOf(err error) types.Reason {
	reason, _ := types.ClientReason(err)
	return reason
}
