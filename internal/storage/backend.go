// Package storage defines the key/value storage boundary for PromptNest.
// Every durable collection (categories, prompts, settings, search history)
// lives under one well-known key as a JSON blob; the store layer above does
// whole-collection read-modify-write against this interface.
package storage

import "errors"

// Well-known keys. The export document and the extension's storage area
// both use these names, so they are part of the external contract.
const (
	KeyCategories    = "categories"
	KeyPrompts       = "prompts"
	KeySettings      = "settings"
	KeySearchHistory = "searchHistory"
)

// ErrUnavailable reports that the backing storage area cannot be reached
// (missing chrome.storage in this context, closed database, quota trouble).
// Callers are expected to fail closed: treat reads as empty and surface a
// notification for writes rather than crash.
var ErrUnavailable = errors.New("storage: backend unavailable")

// Backend is the durable key/value service behind a Store.
// Implementations must be safe for concurrent use within one context.
type Backend interface {
	// Get returns the raw value for key. The boolean reports presence;
	// a missing key is not an error.
	Get(key string) ([]byte, bool, error)

	// Set writes the raw value for key, replacing any previous value.
	Set(key string, value []byte) error

	// Remove deletes the given keys. Missing keys are ignored.
	Remove(keys ...string) error

	// Clear deletes every key in the storage area.
	Clear() error

	// BytesInUse reports the approximate stored size in bytes.
	BytesInUse() (int64, error)
}
