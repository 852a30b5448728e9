// Package messaging routes the action messages exchanged between the
// extension's contexts. Requests carry an action tag plus that action's
// fields; responses carry only the keys relevant to the action, so they stay
// shape-compatible with handlers written against the raw message protocol.
package messaging

import (
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Action identifies what a message asks for.
type Action string

const (
	// ActionFillPrompt asks the page context to insert prompt text into the
	// active chat input.
	ActionFillPrompt Action = "fillPrompt"

	// ActionToggleSidebar asks the page context to open or close the sidebar,
	// optionally focusing its search box.
	ActionToggleSidebar Action = "toggleSidebar"

	// ActionCheckSupportedSite asks whether a URL belongs to a supported
	// chat site.
	ActionCheckSupportedSite Action = "checkSupportedSite"

	// ActionGetTabInfo asks for the active tab's URL and title.
	ActionGetTabInfo Action = "getTabInfo"
)

// unknownActionError is the reply to any action without a handler.
const unknownActionError = "Unknown action"

// Tab describes a browser tab.
type Tab struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Request is an incoming message. Only the fields for its action are set.
type Request struct {
	Action      Action `json:"action"`
	PromptText  string `json:"promptText,omitempty"`
	FocusSearch bool   `json:"focusSearch,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Response is a reply. Pointer fields distinguish "false" from "not part of
// this reply".
type Response struct {
	Success   *bool  `json:"success,omitempty"`
	Supported *bool  `json:"supported,omitempty"`
	Tab       *Tab   `json:"tab,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SuccessResponse reports whether an action worked.
func SuccessResponse(ok bool) Response {
	return Response{Success: &ok}
}

// SupportedResponse answers a site support check.
func SupportedResponse(supported bool) Response {
	return Response{Supported: &supported}
}

// TabResponse carries tab information.
func TabResponse(tab Tab) Response {
	return Response{Tab: &tab}
}

// ErrorResponse reports a failure.
func ErrorResponse(msg string) Response {
	return Response{Error: msg}
}

// Handler processes one action.
type Handler func(Request) Response

// Router dispatches requests to registered handlers. Register everything at
// startup; Dispatch does not lock.
type Router struct {
	handlers map[Action]Handler
	log      zerolog.Logger
}

// NewRouter returns an empty Router.
func NewRouter(log zerolog.Logger) *Router {
	return &Router{
		handlers: make(map[Action]Handler),
		log:      log.With().Str("component", "messaging").Logger(),
	}
}

// Handle registers the handler for an action, replacing any previous one.
func (r *Router) Handle(action Action, h Handler) {
	r.handlers[action] = h
}

// Dispatch routes a request to its handler. Requests for actions nothing
// handles get an error response rather than silence, so a sender's callback
// always fires.
func (r *Router) Dispatch(req Request) Response {
	h, ok := r.handlers[req.Action]
	if !ok {
		r.log.Warn().Str("action", string(req.Action)).Msg("unknown action")
		return ErrorResponse(unknownActionError)
	}
	return h(req)
}

// DispatchJSON decodes a raw message, dispatches it, and encodes the reply.
func (r *Router) DispatchJSON(raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		out, _ := json.Marshal(ErrorResponse("malformed message: " + err.Error()))
		return out
	}
	out, err := json.Marshal(r.Dispatch(req))
	if err != nil {
		fallback, _ := json.Marshal(ErrorResponse(err.Error()))
		return fallback
	}
	return out
}
