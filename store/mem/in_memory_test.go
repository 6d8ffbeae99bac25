package mem

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	value, err := s.Get(ctx, "jobs", "missing")
	assert.Nil(t, err)
	assert.Nil(t, value)

	assert.Nil(t, s.Set(ctx, "jobs", "b", []byte("2")))
	assert.Nil(t, s.Set(ctx, "jobs", "a", []byte("1")))
	assert.Nil(t, s.Set(ctx, "other", "c", []byte("3")))

	value, err = s.Get(ctx, "jobs", "a")
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), value)

	var keys []string
	assert.Nil(t, s.List(ctx, "jobs", func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.Equal(t, []string{"a", "b"}, keys)

	keys = nil
	assert.Nil(t, s.List(ctx, "jobs", func(key string) bool {
		keys = append(keys, key)
		return false
	}))
	assert.Equal(t, []string{"a"}, keys)

	assert.Nil(t, s.Remove(ctx, "jobs", "a"))
	assert.Nil(t, s.Remove(ctx, "jobs", "a"))
	value, _ = s.Get(ctx, "jobs", "a")
	assert.Nil(t, value)
	assert.Nil(t, s.Close())
}

func TestMemStoreCopiesValues(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	v := []byte("abc")
	assert.Nil(t, s.Set(ctx, "jobs", "a", v))
	v[0] = 'x'

	got, _ := s.Get(ctx, "jobs", "a")
	assert.Equal(t, []byte("abc"), got)
	got[0] = 'y'
	got, _ = s.Get(ctx, "jobs", "a")
	assert.Equal(t, []byte("abc"), got)
}

func TestMemStoreErrHandler(t *testing.T) {
	boom := errors.New("boom")
	s := NewMemStoreWithErrHandler(func() error { return boom })
	assert.Equal(t, boom, s.Set(context.Background(), "jobs", "a", nil))
	_, err := s.Get(context.Background(), "jobs", "a")
	assert.Equal(t, boom, err)
}
