// Package kvstore provides the device-local key-value store backing
// per-day challenge selection and completion records.
package kvstore

import "errors"

// Store is a synchronous string-keyed store with no expiry and no
// transactions. Keys are namespaced by feature and date by callers.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(key string) (string, error)

	// Set writes the value for key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases any underlying resources.
	Close() error
}

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")
