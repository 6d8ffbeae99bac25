package store

import "context"

// PrefixJobs groups the job records.
const PrefixJobs = "jobs"

/**
 * Store keeps serialized job records under (prefix, key).
 * Get of a missing key returns nil and no error.
 */
type Store interface {
	Get(ctx context.Context, prefix, key string) ([]byte, error)
	Set(ctx context.Context, prefix, key string, value []byte) error
	/**
	 * Remove a prefix and key
	 * removing a missing prefix + key does NOT return an error
	 */
	Remove(ctx context.Context, prefix, key string) error

	// List calls iterator with every key of prefix in key order until it returns false.
	List(ctx context.Context, prefix string, iterator func(key string) bool) error

	Close() error
}
