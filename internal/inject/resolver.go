package inject

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Resolver finds the page's chat input and fills it.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver returns a Resolver logging through log.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{log: log.With().Str("component", "inject").Logger()}
}

// Fill locates the most likely input field on doc and sets it to text.
// Selectors are tried in order; within a selector's matches the largest
// visible element wins, on the theory that the composer is the biggest
// editable thing on a chat page. Returns false when nothing fillable exists.
func (r *Resolver) Fill(doc Document, text string) bool {
	target, selector := r.locate(doc)
	if target == nil {
		r.log.Debug().Str("host", doc.Hostname()).Msg("no input field found")
		return false
	}
	r.log.Debug().Str("host", doc.Hostname()).Str("selector", selector).Msg("filling input")

	target.Focus()

	switch {
	case target.ContentEditable():
		r.fillEditable(target, text)
	case target.Tag() == "P":
		r.fillParagraph(target, text)
	default:
		target.SetValue(text)
		target.Dispatch("input")
		target.Dispatch("change")
		target.Dispatch("keyup")
		target.SetSelectionRange(utf8.RuneCountInString(text))
	}
	return true
}

func (r *Resolver) locate(doc Document) (Element, string) {
	for _, selector := range SelectorsFor(doc.Hostname()) {
		var best Element
		bestArea := 0
		for _, el := range doc.Query(selector) {
			w, h := el.Size()
			if w <= 0 || h <= 0 {
				continue
			}
			if area := w * h; area > bestArea {
				best, bestArea = el, area
			}
		}
		if best != nil {
			return best, selector
		}
	}
	return nil, ""
}

// fillEditable writes rich text into a contenteditable host. Some editors
// keep their text inside an inner <p> and watch it for input; when one is
// there, content goes into it and the event fires on both levels.
func (r *Resolver) fillEditable(el Element, text string) {
	markup := toMarkup(text)
	if p := el.QueryInner("p"); p != nil {
		p.SetRichText(markup)
		p.Dispatch("input")
	} else {
		el.SetRichText(markup)
	}
	el.Dispatch("input")
	el.Dispatch("keyup")
	el.CollapseSelectionToEnd()
}

// fillParagraph handles a selector that landed directly on the inner <p> of
// a rich-text editor.
func (r *Resolver) fillParagraph(el Element, text string) {
	parent := el.Parent()
	if parent != nil && parent.ContentEditable() {
		parent.Focus()
	}

	el.SetRichText(toMarkup(text))
	el.Dispatch("input")
	if parent != nil {
		parent.Dispatch("input")
		parent.Dispatch("keyup")
	}
	el.CollapseSelectionToEnd()
}

// toMarkup converts plain prompt text to the HTML a rich-text editor expects:
// text is escaped, then newlines become line breaks.
func toMarkup(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
