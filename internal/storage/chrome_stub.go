//go:build !js || !wasm
// +build !js !wasm

package storage

// ChromeLocal is a stub for non-WASM builds; the chrome.storage API only
// exists inside a browser extension context.
type ChromeLocal struct{}

// NewChromeLocal is a stub for non-WASM builds.
func NewChromeLocal() (*ChromeLocal, error) {
	return nil, ErrUnavailable
}

// Get is a stub for non-WASM builds.
func (c *ChromeLocal) Get(_ string) ([]byte, bool, error) { return nil, false, ErrUnavailable }

// Set is a stub for non-WASM builds.
func (c *ChromeLocal) Set(_ string, _ []byte) error { return ErrUnavailable }

// Remove is a stub for non-WASM builds.
func (c *ChromeLocal) Remove(_ ...string) error { return ErrUnavailable }

// Clear is a stub for non-WASM builds.
func (c *ChromeLocal) Clear() error { return ErrUnavailable }

// BytesInUse is a stub for non-WASM builds.
func (c *ChromeLocal) BytesInUse() (int64, error) { return 0, ErrUnavailable }
