package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warriorguo/oozie/store"
	"github.com/warriorguo/oozie/types"
)

// getTestConfig reads POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER,
// POSTGRES_PASSWORD and POSTGRES_DB over DefaultConfig.
func getTestConfig() *types.PostgresConfig {
	config := DefaultConfig()

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		config.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("POSTGRES_PORT")); err == nil {
		config.Port = port
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		config.User = user
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		config.Password = password
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		config.Database = db
	}
	return config
}

// openOrSkip skips the test when no database is reachable.
func openOrSkip(t *testing.T) store.Store {
	s, err := NewPostgresStore(context.Background(), getTestConfig())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const testPrefix = "jobs-test"

func TestPostgresStore_SetGetRemove(t *testing.T) {
	s := openOrSkip(t)
	ctx := context.Background()

	require.Nil(t, s.Set(ctx, testPrefix, "0000001-oozie-W", []byte(`{"status":"PREP"}`)))
	require.Nil(t, s.Set(ctx, testPrefix, "0000001-oozie-W", []byte(`{"status":"RUNNING"}`)))

	value, err := s.Get(ctx, testPrefix, "0000001-oozie-W")
	assert.Nil(t, err)
	assert.Equal(t, []byte(`{"status":"RUNNING"}`), value)

	value, err = s.Get(ctx, testPrefix, "non-existent")
	assert.Nil(t, err)
	assert.Nil(t, value)

	assert.Nil(t, s.Remove(ctx, testPrefix, "0000001-oozie-W"))
	assert.Nil(t, s.Remove(ctx, testPrefix, "0000001-oozie-W"))
	value, err = s.Get(ctx, testPrefix, "0000001-oozie-W")
	assert.Nil(t, err)
	assert.Nil(t, value)
}

func TestPostgresStore_List(t *testing.T) {
	s := openOrSkip(t)
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		require.Nil(t, s.Set(ctx, testPrefix, key, []byte(key)))
	}
	require.Nil(t, s.Set(ctx, testPrefix+"-other", "a", []byte("other")))
	t.Cleanup(func() {
		for _, key := range []string{"a", "b", "c"} {
			s.Remove(ctx, testPrefix, key)
		}
		s.Remove(ctx, testPrefix+"-other", "a")
	})

	keys := make([]string, 0)
	assert.Nil(t, s.List(ctx, testPrefix, func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	count := 0
	assert.Nil(t, s.List(ctx, testPrefix, func(key string) bool {
		count++
		return count < 2
	}))
	assert.Equal(t, 2, count)

	keys = keys[:0]
	assert.Nil(t, s.List(ctx, "non-existent", func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.Empty(t, keys)
}

func TestPostgresStore_BinaryData(t *testing.T) {
	s := openOrSkip(t)
	ctx := context.Background()

	binaryData := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}
	require.Nil(t, s.Set(ctx, testPrefix, "binary", binaryData))
	defer s.Remove(ctx, testPrefix, "binary")

	value, err := s.Get(ctx, testPrefix, "binary")
	assert.Nil(t, err)
	assert.Equal(t, binaryData, value)
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(DefaultConfig()))

	for name, mutate := range map[string]func(c *types.PostgresConfig){
		"host":     func(c *types.PostgresConfig) { c.Host = "" },
		"port":     func(c *types.PostgresConfig) { c.Port = 0 },
		"user":     func(c *types.PostgresConfig) { c.User = "" },
		"database": func(c *types.PostgresConfig) { c.Database = "" },
		"sslmode":  func(c *types.PostgresConfig) { c.SSLMode = "invalid" },
	} {
		config := DefaultConfig()
		mutate(config)
		assert.NotNil(t, Validate(config), name)
	}

	config := DefaultConfig()
	config.SSLMode = ""
	assert.Nil(t, Validate(config))
	assert.Equal(t, "disable", config.SSLMode)
}

func TestNewPostgresStoreRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Port = -1
	_, err := NewPostgresStore(context.Background(), config)
	reason, _ := types.ClientReason(err)
	assert.Equal(t, types.ReasonConfiguration, reason)
}

func TestDSN(t *testing.T) {
	config := &types.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, DSN(config))
}

func TestParseDSN(t *testing.T) {
	config, err := ParseDSN("host=db port=6432 user=testuser password=testpass dbname=testdb sslmode=require")
	assert.Nil(t, err)
	assert.Equal(t, "db", config.Host)
	assert.Equal(t, 6432, config.Port)
	assert.Equal(t, "testuser", config.User)
	assert.Equal(t, "testpass", config.Password)
	assert.Equal(t, "testdb", config.Database)
	assert.Equal(t, "require", config.SSLMode)

	config, err = ParseDSN("dbname=jobs")
	assert.Nil(t, err)
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, "jobs", config.Database)

	_, err = ParseDSN("port=abc")
	assert.NotNil(t, err)
}
