//go:build js && wasm

package inject

import "syscall/js"

// BrowserDocument adapts the real page DOM to the Document interface.
func BrowserDocument() Document {
	return jsDocument{
		doc: js.Global().Get("document"),
		loc: js.Global().Get("location"),
	}
}

type jsDocument struct {
	doc js.Value
	loc js.Value
}

func (d jsDocument) Hostname() string {
	return d.loc.Get("hostname").String()
}

func (d jsDocument) Query(selector string) []Element {
	list := d.doc.Call("querySelectorAll", selector)
	n := list.Get("length").Int()
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, jsElement{v: list.Index(i)})
	}
	return out
}

type jsElement struct {
	v js.Value
}

func (e jsElement) Tag() string {
	return e.v.Get("tagName").String()
}

func (e jsElement) Size() (int, int) {
	return e.v.Get("offsetWidth").Int(), e.v.Get("offsetHeight").Int()
}

func (e jsElement) ContentEditable() bool {
	return e.v.Get("contentEditable").String() == "true"
}

func (e jsElement) QueryInner(selector string) Element {
	inner := e.v.Call("querySelector", selector)
	if !inner.Truthy() {
		return nil
	}
	return jsElement{v: inner}
}

func (e jsElement) Parent() Element {
	parent := e.v.Get("parentElement")
	if !parent.Truthy() {
		return nil
	}
	return jsElement{v: parent}
}

func (e jsElement) Focus() {
	e.v.Call("focus")
}

func (e jsElement) SetValue(text string) {
	e.v.Set("value", text)
}

func (e jsElement) SetRichText(html string) {
	e.v.Set("innerHTML", html)
}

func (e jsElement) Dispatch(event string) {
	ev := js.Global().Get("Event").New(event, map[string]any{"bubbles": true})
	e.v.Call("dispatchEvent", ev)
}

func (e jsElement) SetSelectionRange(n int) {
	if e.v.Get("setSelectionRange").Truthy() {
		e.v.Call("setSelectionRange", n, n)
	}
}

func (e jsElement) CollapseSelectionToEnd() {
	doc := js.Global().Get("document")
	sel := js.Global().Call("getSelection")
	if !sel.Truthy() {
		e.v.Call("focus")
		return
	}
	rng := doc.Call("createRange")
	rng.Call("selectNodeContents", e.v)
	rng.Call("collapse", false)
	sel.Call("removeAllRanges")
	sel.Call("addRange", rng)
}
