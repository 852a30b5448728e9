//go:build js && wasm
// +build js,wasm

package storage

import (
	"fmt"
	"syscall/js"
)

// ChromeLocal binds the chrome.storage.local area of the current extension
// context. Values are stored as JSON strings under their key, which is what
// the popup/background scripts read on their side.
type ChromeLocal struct {
	area js.Value
}

// NewChromeLocal returns a backend over chrome.storage.local, or
// ErrUnavailable when the chrome storage API is not exposed in this context
// (e.g. a plain web page outside the extension).
func NewChromeLocal() (*ChromeLocal, error) {
	chrome := js.Global().Get("chrome")
	if chrome.IsUndefined() {
		return nil, ErrUnavailable
	}
	storage := chrome.Get("storage")
	if storage.IsUndefined() {
		return nil, ErrUnavailable
	}
	area := storage.Get("local")
	if area.IsUndefined() {
		return nil, ErrUnavailable
	}
	return &ChromeLocal{area: area}, nil
}

// Get reads the value stored under key.
func (c *ChromeLocal) Get(key string) ([]byte, bool, error) {
	result, err := await(c.area.Call("get", key))
	if err != nil {
		return nil, false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	v := result.Get(key)
	if v.IsUndefined() || v.IsNull() {
		return nil, false, nil
	}
	return []byte(v.String()), true, nil
}

// Set writes the value under key.
func (c *ChromeLocal) Set(key string, value []byte) error {
	items := js.Global().Get("Object").New()
	items.Set(key, string(value))
	if _, err := await(c.area.Call("set", items)); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the given keys.
func (c *ChromeLocal) Remove(keys ...string) error {
	arr := js.Global().Get("Array").New(len(keys))
	for i, k := range keys {
		arr.SetIndex(i, k)
	}
	if _, err := await(c.area.Call("remove", arr)); err != nil {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}

// Clear wipes the whole storage area.
func (c *ChromeLocal) Clear() error {
	if _, err := await(c.area.Call("clear")); err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	return nil
}

// BytesInUse reports the platform's byte-usage figure for the area.
func (c *ChromeLocal) BytesInUse() (int64, error) {
	result, err := await(c.area.Call("getBytesInUse", js.Null()))
	if err != nil {
		return 0, fmt.Errorf("storage: bytesInUse: %w", err)
	}
	return int64(result.Int()), nil
}

// await blocks on a JS Promise using a channel, the same pattern the rest
// of the WASM bridge uses for fetch-style APIs.
func await(promise js.Value) (js.Value, error) {
	type outcome struct {
		value js.Value
		err   error
	}
	ch := make(chan outcome, 1)

	then := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var v js.Value
		if len(args) > 0 {
			v = args[0]
		}
		ch <- outcome{value: v}
		return nil
	})
	defer then.Release()

	catch := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		msg := "promise rejected"
		if len(args) > 0 {
			if m := args[0].Get("message"); !m.IsUndefined() {
				msg = m.String()
			}
		}
		ch <- outcome{err: fmt.Errorf("%s", msg)}
		return nil
	})
	defer catch.Release()

	promise.Call("then", then).Call("catch", catch)

	out := <-ch
	return out.value, out.err
}
