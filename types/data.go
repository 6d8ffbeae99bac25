package types

import (
	"encoding/json"
	"sort"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

// Data is the caller-supplied parameter bag of a workflow node.
type Data map[string]any

func (d *Data) Get(key string) (any, bool) {
	v, exists := (*d)[key]
	return v, exists
}

func (d *Data) GetString(key string) (string, bool) {
	v, exists := d.Get(key)
	return cast.ToString(v), exists
}

// GetNonEmptyString is GetString treating nil and "" as absent.
func (d *Data) GetNonEmptyString(key string) (string, bool) {
	v, exists := d.Get(key)
	if !exists || v == nil {
		return "", false
	}
	s := cast.ToString(v)
	return s, s != ""
}

func (d *Data) GetInt(key string) (int, bool) {
	v, exists := d.Get(key)
	return cast.ToInt(v), exists
}

func (d *Data) GetBool(key string) (bool, bool) {
	v, exists := d.Get(key)
	return cast.ToBool(v), exists
}

func (d *Data) GetStringMapString(key string) (map[string]string, bool) {
	v, exists := d.Get(key)
	return cast.ToStringMapString(v), exists
}

func (d *Data) GetSlice(key string) ([]any, bool) {
	v, exists := d.Get(key)
	if !exists {
		return nil, false
	}
	return cast.ToSlice(v), true
}

func (d *Data) GetStruct(key string, s any) error {
	v, exists := d.Get(key)
	if !exists {
		return errors.NotFound
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.New("marshal failed"))
	}
	return json.Unmarshal(b, s)
}

func (d *Data) Set(key string, value any) {
	(*d)[key] = value
}

// Keys returns the keys in sorted order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Without returns a shallow copy of d with the given keys left out.
func (d Data) Without(keys ...string) Data {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := make(Data, len(d))
	for k, v := range d {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}
