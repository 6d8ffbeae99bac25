package types_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warriorguo/oozie/types"
)

type testStruct struct {
	Name   string
	Age    int
	IsMale bool
}

func TestData(t *testing.T) {
	data := &types.Data{}

	data.Set("teststruct1", testStruct{"hello", 4, false})

	hello := &testStruct{}
	assert.Nil(t, data.GetStruct("teststruct1", hello))
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, 4, hello.Age)
	assert.NotNil(t, data.GetStruct("missing", hello))

	data.Set("s1", 1)
	data.Set("s2", "2")
	data.Set("s3", math.Pi)
	data.Set("s4", true)
	data.Set("s5", nil)

	_, exists := data.Get("s0")
	assert.False(t, exists)

	s, exists := data.GetString("s1")
	assert.True(t, exists)
	assert.Equal(t, "1", s)
	s, exists = data.GetString("s3")
	assert.True(t, exists)
	assert.Equal(t, strconv.FormatFloat(math.Pi, 'f', -1, 64), s)
	s, exists = data.GetString("s4")
	assert.True(t, exists)
	assert.Equal(t, "true", s)

	_, exists = data.GetNonEmptyString("s5")
	assert.False(t, exists)
	s, exists = data.GetNonEmptyString("s2")
	assert.True(t, exists)
	assert.Equal(t, "2", s)
}

func TestDataKeysAndWithout(t *testing.T) {
	data := types.Data{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, data.Keys())

	rest := data.Without("a", "c")
	assert.Equal(t, types.Data{"b": 1}, rest)
	assert.Len(t, data, 3)
}

func TestDataStringMap(t *testing.T) {
	data := types.Data{"params": map[string]any{"DATE": "2024-01-01", "N": 3}}
	m, exists := data.GetStringMapString("params")
	assert.True(t, exists)
	assert.Equal(t, "2024-01-01", m["DATE"])
	assert.Equal(t, "3", m["N"])
}
