package inject

// Document is the slice of the DOM the resolver needs. The browser build
// backs it with syscall/js; tests back it with an in-memory fake.
type Document interface {
	Hostname() string
	Query(selector string) []Element
}

// Element is a candidate input field.
type Element interface {
	// Tag returns the upper-case tag name, as the DOM reports it.
	Tag() string

	// Size returns the rendered width and height in pixels. Hidden elements
	// report zero.
	Size() (w, h int)

	// ContentEditable reports whether the element is a rich-text editor host.
	ContentEditable() bool

	// QueryInner returns the first descendant matching selector, or nil.
	QueryInner(selector string) Element

	// Parent returns the parent element, or nil at the root.
	Parent() Element

	Focus()

	// SetValue assigns the value property of an input or textarea.
	SetValue(text string)

	// SetRichText replaces the element's HTML content.
	SetRichText(html string)

	// Dispatch fires a bubbling event of the given type on the element.
	Dispatch(event string)

	// SetSelectionRange collapses the caret to offset n in a plain input.
	SetSelectionRange(n int)

	// CollapseSelectionToEnd moves the caret past the last child of a
	// rich-text element.
	CollapseSelectionToEnd()
}
