//go:build js && wasm

// The wasm binary is the PromptNest core. It owns the prompt library and its
// search, import/export, and page-injection logic; the extension's JS shells
// (popup, background, content script) call into the export table below and
// render whatever comes back.
package main

import (
	"errors"
	"fmt"
	"os"
	"syscall/js"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shawon39/promptnest/internal/backup"
	"github.com/shawon39/promptnest/internal/capture"
	"github.com/shawon39/promptnest/internal/inject"
	"github.com/shawon39/promptnest/internal/messaging"
	"github.com/shawon39/promptnest/internal/search"
	"github.com/shawon39/promptnest/internal/storage"
	"github.com/shawon39/promptnest/internal/store"
)

const Version = "1.0.0"

var (
	log      zerolog.Logger
	st       *store.Store
	engine   *backup.Engine
	resolver *inject.Resolver
	router   *messaging.Router
)

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).
		With().Timestamp().Str("service", "promptnest").Logger()

	backend, err := newBackend()
	if err != nil {
		log.Fatal().Err(err).Msg("no usable storage backend")
	}

	st = store.New(backend, log)
	engine = backup.NewEngine(st, log)
	resolver = inject.NewResolver(log)
	router = newRouter()

	if err := st.EnsureDefaults(); err != nil {
		log.Error().Err(err).Msg("seeding defaults failed")
	}

	// Storage-touching entry points go through asyncFunc: the chrome.storage
	// backend parks the calling goroutine on a Promise, which must never
	// happen on the event-loop callback itself. DOM-only and pure functions
	// stay synchronous.
	js.Global().Set("PromptNest", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		// Categories
		"getCategories":  asyncFunc(getCategories),
		"addCategory":    asyncFunc(addCategory),
		"updateCategory": asyncFunc(updateCategory),
		"deleteCategory": asyncFunc(deleteCategory),
		// Prompts
		"getPrompts":           asyncFunc(getPrompts),
		"getPromptsByCategory": asyncFunc(getPromptsByCategory),
		"addPrompt":            asyncFunc(addPrompt),
		"updatePrompt":         asyncFunc(updatePrompt),
		"deletePrompt":         asyncFunc(deletePrompt),
		"clonePrompt":          asyncFunc(clonePrompt),
		"incrementUsage":       asyncFunc(incrementUsage),
		"recentPrompts":        asyncFunc(recentPrompts),
		"popularPrompts":       asyncFunc(popularPrompts),
		// Search
		"search":           asyncFunc(searchPrompts),
		"highlight":        js.FuncOf(highlight),
		"highlightSpans":   js.FuncOf(highlightSpans),
		"getSearchHistory": asyncFunc(getSearchHistory),
		"addSearchHistory": asyncFunc(addSearchHistory),
		// Settings and stats
		"getSettings":    asyncFunc(getSettings),
		"updateSettings": asyncFunc(updateSettings),
		"getStatistics":  asyncFunc(getStatistics),
		// Backup
		"exportData":        asyncFunc(exportData),
		"exportPromptsOnly": asyncFunc(exportPromptsOnly),
		"exportText":        asyncFunc(exportText),
		"importData":        asyncFunc(importData),
		// Page integration
		"fillPrompt":         js.FuncOf(fillPrompt),
		"saveSelection":      asyncFunc(saveSelection),
		"checkSupportedSite": js.FuncOf(checkSupportedSite),
		"handleMessage":      js.FuncOf(handleMessage),
	}))

	log.Info().Str("version", Version).Msg("wasm ready")

	// Keep the Go runtime alive for callbacks.
	select {}
}

// newBackend prefers the extension storage area and falls back to process
// memory, which keeps the core usable in contexts (tests, plain pages) that
// have no chrome.storage.
func newBackend() (storage.Backend, error) {
	chrome, err := storage.NewChromeLocal()
	if err == nil {
		return chrome, nil
	}
	if errors.Is(err, storage.ErrUnavailable) {
		log.Warn().Msg("chrome.storage unavailable, using in-memory backend")
		return storage.NewMemory(), nil
	}
	return nil, err
}

// newRouter wires the actions the core can answer by itself. toggleSidebar
// and getTabInfo need the tabs API and stay with the background script; they
// still share the Request/Response vocabulary.
func newRouter() *messaging.Router {
	r := messaging.NewRouter(log)
	r.Handle(messaging.ActionFillPrompt, func(req messaging.Request) messaging.Response {
		ok := resolver.Fill(inject.BrowserDocument(), req.PromptText)
		return messaging.SuccessResponse(ok)
	})
	r.Handle(messaging.ActionCheckSupportedSite, func(req messaging.Request) messaging.Response {
		return messaging.SupportedResponse(inject.KnownSite(hostOf(req.URL)))
	})
	return r
}

// hostOf pulls the hostname out of a URL string via the page's URL parser.
func hostOf(rawURL string) string {
	u := js.Global().Get("URL")
	if !u.Truthy() {
		return rawURL
	}
	var host string
	func() {
		defer func() { recover() }() // invalid URL throws
		host = u.New(rawURL).Get("hostname").String()
	}()
	return host
}

// =============================================================================
// Category API
// =============================================================================

func getCategories(this js.Value, args []js.Value) interface{} {
	cats, err := st.Categories()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(cats)
}

// addCategory: [name string]
func addCategory(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("addCategory requires 1 arg: name")
	}
	cat, err := st.AddCategory(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(cat)
}

// updateCategory: [id string, patchJSON string]
func updateCategory(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("updateCategory requires 2 args: id, patchJSON")
	}
	var patch store.CategoryPatch
	if err := json.Unmarshal([]byte(args[1].String()), &patch); err != nil {
		return errorResult("patch json: " + err.Error())
	}
	cat, err := st.UpdateCategory(args[0].String(), patch)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(cat)
}

// deleteCategory: [id string]
func deleteCategory(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("deleteCategory requires 1 arg: id")
	}
	if err := st.DeleteCategory(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted " + args[0].String())
}

// =============================================================================
// Prompt API
// =============================================================================

func getPrompts(this js.Value, args []js.Value) interface{} {
	prompts, err := st.Prompts()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(prompts)
}

// getPromptsByCategory: [categoryId string] ("all" or "" returns everything)
func getPromptsByCategory(this js.Value, args []js.Value) interface{} {
	categoryID := ""
	if len(args) > 0 {
		categoryID = args[0].String()
	}
	prompts, err := st.PromptsByCategory(categoryID)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(prompts)
}

// addPrompt: [title string, content string, categoryId string, sourceJSON string (optional)]
func addPrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("addPrompt requires 3+ args: title, content, categoryId, [sourceJSON]")
	}

	var src *store.Source
	if len(args) > 3 && args[3].String() != "" && args[3].String() != "null" {
		src = &store.Source{}
		if err := json.Unmarshal([]byte(args[3].String()), src); err != nil {
			return errorResult("source json: " + err.Error())
		}
	}

	p, err := st.AddPromptWithSource(args[0].String(), args[1].String(), args[2].String(), src)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(p)
}

// updatePrompt: [id string, patchJSON string]
func updatePrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("updatePrompt requires 2 args: id, patchJSON")
	}
	var patch store.PromptPatch
	if err := json.Unmarshal([]byte(args[1].String()), &patch); err != nil {
		return errorResult("patch json: " + err.Error())
	}
	p, err := st.UpdatePrompt(args[0].String(), patch)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(p)
}

// deletePrompt: [id string]
func deletePrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("deletePrompt requires 1 arg: id")
	}
	if err := st.DeletePrompt(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted " + args[0].String())
}

// clonePrompt: [id string]
func clonePrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("clonePrompt requires 1 arg: id")
	}
	p, err := st.ClonePrompt(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(p)
}

// incrementUsage: [id string]
func incrementUsage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("incrementUsage requires 1 arg: id")
	}
	p, err := st.IncrementUsage(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(p)
}

// recentPrompts: [limit int]
func recentPrompts(this js.Value, args []js.Value) interface{} {
	limit := 0
	if len(args) > 0 {
		limit = args[0].Int()
	}
	prompts, err := st.RecentPrompts(limit)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(prompts)
}

// popularPrompts: [limit int]
func popularPrompts(this js.Value, args []js.Value) interface{} {
	limit := 0
	if len(args) > 0 {
		limit = args[0].Int()
	}
	prompts, err := st.PopularPrompts(limit)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(prompts)
}

// =============================================================================
// Search API
// =============================================================================

// searchPrompts: [query string, categoryId string (optional)]
func searchPrompts(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("search requires 1+ args: query, [categoryId]")
	}
	categoryID := ""
	if len(args) > 1 {
		categoryID = args[1].String()
	}
	prompts, err := st.PromptsByCategory(categoryID)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(search.Search(prompts, args[0].String()))
}

// highlight: [text string, query string] -> HTML fragment with <mark> tags
func highlight(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("highlight requires 2 args: text, query")
	}
	return search.Mark(args[0].String(), args[1].String())
}

// highlightSpans: [text string, query string] -> character spans as JSON.
// Offsets are rune positions so JS can slice the text it already has.
func highlightSpans(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("highlightSpans requires 2 args: text, query")
	}
	return jsonResult(search.RuneSpans(args[0].String(), args[1].String()))
}

func getSearchHistory(this js.Value, args []js.Value) interface{} {
	hist, err := st.SearchHistory()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(hist)
}

// addSearchHistory: [query string]
func addSearchHistory(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("addSearchHistory requires 1 arg: query")
	}
	if err := st.AddSearchHistory(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("recorded")
}

// =============================================================================
// Settings and statistics
// =============================================================================

func getSettings(this js.Value, args []js.Value) interface{} {
	settings, err := st.Settings()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(settings)
}

// updateSettings: [patchJSON string]
func updateSettings(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("updateSettings requires 1 arg: patchJSON")
	}
	var patch store.SettingsPatch
	if err := json.Unmarshal([]byte(args[0].String()), &patch); err != nil {
		return errorResult("patch json: " + err.Error())
	}
	settings, err := st.UpdateSettings(patch)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(settings)
}

func getStatistics(this js.Value, args []js.Value) interface{} {
	stats, err := st.Statistics()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(stats)
}

// =============================================================================
// Backup API
// =============================================================================

func exportData(this js.Value, args []js.Value) interface{} {
	doc, err := engine.Export()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(doc)
}

func exportPromptsOnly(this js.Value, args []js.Value) interface{} {
	doc, err := engine.ExportPrompts()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(doc)
}

func exportText(this js.Value, args []js.Value) interface{} {
	text, err := engine.RenderText()
	if err != nil {
		return errorResult(err.Error())
	}
	return text
}

// importData: [docJSON string, optionsJSON string (optional, defaults to merge-all)]
func importData(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("importData requires 1+ args: docJSON, [optionsJSON]")
	}

	doc, err := backup.Parse([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}

	opts := backup.Options{Mode: backup.ModeMerge, Items: backup.AllItems()}
	if len(args) > 1 && args[1].String() != "" && args[1].String() != "null" {
		if err := json.Unmarshal([]byte(args[1].String()), &opts); err != nil {
			return errorResult("options json: " + err.Error())
		}
	}

	sum, err := engine.Import(doc, opts)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(sum)
}

// =============================================================================
// Page integration
// =============================================================================

// fillPrompt: [text string]
// Runs in the content-script context; fills the page's chat input.
func fillPrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("fillPrompt requires 1 arg: text")
	}
	ok := resolver.Fill(inject.BrowserDocument(), args[0].String())
	return jsonResult(map[string]bool{"success": ok})
}

// saveSelection: [text string, pageJSON string (optional {url,title})]
func saveSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("saveSelection requires 1+ args: text, [pageJSON]")
	}

	var page capture.PageInfo
	if len(args) > 1 && args[1].String() != "" && args[1].String() != "null" {
		if err := json.Unmarshal([]byte(args[1].String()), &page); err != nil {
			return errorResult("page json: " + err.Error())
		}
	}

	p, err := capture.Save(st, args[0].String(), page)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(p)
}

// checkSupportedSite: [url string]
func checkSupportedSite(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("checkSupportedSite requires 1 arg: url")
	}
	return jsonResult(map[string]bool{"supported": inject.KnownSite(hostOf(args[0].String()))})
}

// handleMessage: [messageJSON string]
// Runtime messages from other extension contexts go through the router.
func handleMessage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handleMessage requires 1 arg: messageJSON")
	}
	return string(router.DispatchJSON([]byte(args[0].String())))
}

// =============================================================================
// Helpers
// =============================================================================

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// makePromise returns a JS Promise with its resolve/reject functions.
func makePromise() (promise js.Value, resolve js.Value, reject js.Value) {
	var resolveFn, rejectFn js.Value
	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolveFn = args[0]
		rejectFn = args[1]
		return nil
	})
	defer handler.Release()

	promise = js.Global().Get("Promise").New(handler)
	return promise, resolveFn, rejectFn
}

// asyncFunc lifts a handler onto a goroutine and hands the caller a Promise
// for its result. Required for anything that reads or writes storage: those
// goroutines block awaiting chrome.storage, and blocking is illegal on the
// goroutine the JS event loop called into.
func asyncFunc(fn func(js.Value, []js.Value) interface{}) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		promise, resolve, _ := makePromise()
		go func() {
			resolve.Invoke(fn(this, args))
		}()
		return promise
	})
}

func jsonResult(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err))
	}
	return string(raw)
}

func errorResult(msg string) interface{} {
	raw, _ := json.Marshal(map[string]interface{}{"error": msg})
	return string(raw)
}

func successResult(msg string) interface{} {
	raw, _ := json.Marshal(map[string]interface{}{"success": msg})
	return string(raw)
}
