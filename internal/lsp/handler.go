// Package lsp adapts the elaborator into an editor-facing diagnostics
// server: open/change a ".ind" file, get back the parse/type/reduction
// errors it produced, reported at their source position. Completion and
// semantic-token support are dropped; DESIGN.md records why.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"indlang/internal/elaborate"
	"indlang/internal/module"
)

// Handler implements the LSP methods this server supports.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("ind LSP Initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("ind LSP Shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.check(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	full, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	return h.check(ctx, params.TextDocument.URI, full.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// check elaborates a single in-memory document (via a scratch file, so
// include resolution still has a real basePath) against a fresh Module
// and publishes whatever diagnostic it produces.
func (h *Handler) check(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	scratch, err := os.CreateTemp(filepath.Dir(path), ".ind-lsp-*.ind")
	if err != nil {
		return fmt.Errorf("failed to create scratch file for %s: %w", uri, err)
	}
	defer os.Remove(scratch.Name())
	_, err = scratch.WriteString(text)
	if closeErr := scratch.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write scratch file for %s: %w", uri, err)
	}

	mod := module.New()
	runErr := elaborate.RunFile(mod, scratch.Name(), 0, discardWriter{})

	var diagnostics []protocol.Diagnostic
	if runErr != nil {
		diagnostics = append(diagnostics, toDiagnostic(runErr))
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

func toDiagnostic(err error) protocol.Diagnostic {
	line, col := positionOf(err)
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
			End:   protocol.Position{Line: uint32(line), Character: uint32(col) + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("ind"),
		Message:  err.Error(),
	}
}

// positionOf best-effort-parses a "file:line:col: message" prefix off
// err's text (the shape most elaborate-package errors carry, via
// token.Position's String method), returning 0-based coordinates, or
// 0, 0 when there is no such prefix.
func positionOf(err error) (line, col int) {
	parts := strings.SplitN(err.Error(), ":", 4)
	if len(parts) < 3 {
		return 0, 0
	}
	var l, c int
	if _, scanErr := fmt.Sscanf(parts[1]+":"+parts[2], "%d:%d", &l, &c); scanErr != nil {
		return 0, 0
	}
	if l > 0 {
		l--
	}
	if c > 0 {
		c--
	}
	return l, c
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func ptrBool(b bool) *bool                                                     { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity   { return &s }
func ptrString(s string) *string                                              { return &s }
