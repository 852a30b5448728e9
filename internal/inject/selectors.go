// Package inject locates the active chat input on a page and fills it with
// prompt text, firing the synthetic events frameworks listen for so the page
// notices the change.
package inject

import "strings"

// siteSelectors lists known chat sites with the selectors that reach their
// composer, best first. Matching is by hostname substring so subdomains and
// country TLD variants resolve to the same entry.
var siteSelectors = []struct {
	host      string
	selectors []string
}{
	{"chat.openai.com", []string{"#prompt-textarea"}},
	{"chatgpt.com", []string{"#prompt-textarea"}},
	{"gemini.google.com", []string{
		".text-input-field_textarea .ql-editor",
		".text-input-field_textarea",
		`div[role="textbox"]`,
		`[contenteditable="true"]`,
	}},
	{"claude.ai", []string{"#chat-input-file-upload-onpage", `input[placeholder*="ask"]`}},
	{"copilot.microsoft.com", []string{`textarea[placeholder*="Copilot"]`}},
	{"chat.deepseek.com", []string{"#chat-input"}},
}

// fallbackSelectors run on every site, after any site-specific selectors.
// Placeholder probes come first because they are the strongest signal that a
// field wants free text; bare textareas and text inputs are the last resort.
var fallbackSelectors = []string{
	`textarea[placeholder*="ask"]`,
	`textarea[placeholder*="now"]`,
	`textarea[placeholder*="Message"]`,
	`textarea[placeholder*="message"]`,
	`textarea[placeholder*="chat"]`,
	`textarea[placeholder*="prompt"]`,
	`div[contenteditable="true"]`,
	`textarea:not([type="password"])`,
	`input[type="text"]:not([type="password"])`,
}

// KnownSite reports whether the hostname belongs to a chat site with
// dedicated selectors.
func KnownSite(hostname string) bool {
	for _, site := range siteSelectors {
		if strings.Contains(hostname, site.host) {
			return true
		}
	}
	return false
}

// SelectorsFor returns the selector sequence to try for a hostname:
// site-specific selectors first when the site is known, then the fallbacks.
func SelectorsFor(hostname string) []string {
	for _, site := range siteSelectors {
		if strings.Contains(hostname, site.host) {
			out := make([]string, 0, len(site.selectors)+len(fallbackSelectors))
			out = append(out, site.selectors...)
			return append(out, fallbackSelectors...)
		}
	}
	return fallbackSelectors
}
