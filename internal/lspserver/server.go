// Package lspserver implements the JSON-RPC-over-stdio transport and
// request dispatch that exposes the document store, resolver, renderer,
// completion engine, and code-action engine to an editor.
package lspserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"drupalls/internal/codeaction"
	"drupalls/internal/completion"
	"drupalls/internal/indexer"
	"drupalls/internal/logging"
	"drupalls/internal/render"
	"drupalls/internal/resolver"
	"drupalls/internal/store"
	"drupalls/internal/token"
)

// Request is a JSON-RPC request or notification as the editor protocol
// frames it over stdio.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error payload.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server holds the wired components a running session dispatches requests
// to: the document store, the cursor resolver, and the completion engine
// (codeaction and render are stateless and called directly).
type Server struct {
	store      *store.Store
	resolver   *resolver.Resolver
	completion *completion.Engine
}

// New creates a Server backed by the given document store.
func New(st *store.Store) *Server {
	return &Server{
		store:      st,
		resolver:   resolver.New(st),
		completion: completion.New(st),
	}
}

// ServeStdio reads Content-Length-framed JSON-RPC messages from r and
// writes framed responses to w until ctx is cancelled or the stream ends,
// following the same header-parsing loop as the teacher's own LSP
// transport.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	log := logging.Get(logging.CategoryServer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		const prefix = "Content-Length: "
		if !strings.HasPrefix(header, prefix) {
			continue
		}
		length, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
		if err != nil {
			continue
		}

		// Skip the blank line separating headers from the body.
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(reader, body); err != nil {
			continue
		}

		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			log.Warn("failed to decode request: %v", err)
			continue
		}

		corrID := uuid.NewString()
		log.Debug("[%s] %s", corrID, req.Method)

		resp := s.handle(ctx, req)
		if resp == nil {
			continue
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			log.Warn("[%s] failed to encode response: %v", corrID, err)
			continue
		}
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(payload), payload)
	}
}

func (s *Server) handle(ctx context.Context, req Request) *Response {
	switch req.Method {
	case "initialize":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: initializeResult()}

	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil
		}
		if err := s.store.Put(p.TextDocument.URI, []byte(p.TextDocument.Text), p.TextDocument.Version); err != nil {
			logging.Get(logging.CategoryServer).Warn("didOpen: %v", err)
		}
		return nil

	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil
		}
		changes := make([]string, len(p.ContentChanges))
		for i, c := range p.ContentChanges {
			changes[i] = c.Text
		}
		if err := s.store.ApplyChange(p.TextDocument.URI, changes); err != nil {
			logging.Get(logging.CategoryServer).Warn("didChange: %v", err)
		}
		return nil

	case "textDocument/didClose":
		return nil

	case "textDocument/didSave":
		return nil

	case "textDocument/hover":
		return s.handleHover(req)

	case "textDocument/definition":
		return s.handleDefinition(req)

	case "textDocument/completion":
		return s.handleCompletion(req)

	case "textDocument/codeAction":
		return s.handleCodeAction(req)

	case "shutdown":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: nil}

	case "exit":
		os.Exit(0)
		return nil

	default:
		return nil
	}
}

func initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync":   1,
			"definitionProvider": true,
			"hoverProvider":      true,
			"completionProvider": map[string]interface{}{
				"triggerCharacters": []string{"/", ":", "(", "'"},
			},
			"codeActionProvider": true,
		},
	}
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type lspPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

func (p lspPosition) toPoint() token.Point {
	return token.Point{Row: p.Line, Column: p.Character}
}

type didOpenParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Text    string `json:"text"`
		Version int    `json:"version"`
	} `json:"textDocument"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lspPosition            `json:"position"`
}

func errorResponse(id interface{}, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

func (s *Server) handleHover(req Request) *Response {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, fmt.Sprintf("invalid hover params: %v", err))
	}

	match, err := s.resolver.Resolve(p.TextDocument.URI, p.Position.toPoint())
	if err != nil {
		return errorResponse(req.ID, -32603, fmt.Sprintf("resolve failed: %v", err))
	}

	text := render.Hover(match)
	if text == "" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: nil}
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"contents": map[string]string{"kind": "markdown", "value": text},
		},
	}
}

func (s *Server) handleDefinition(req Request) *Response {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, fmt.Sprintf("invalid definition params: %v", err))
	}

	match, err := s.resolver.Resolve(p.TextDocument.URI, p.Position.toPoint())
	if err != nil {
		return errorResponse(req.ID, -32603, fmt.Sprintf("resolve failed: %v", err))
	}
	if match == nil || match.Document == nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: nil}
	}

	start := match.Token.Range.StartPoint
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"uri": match.Document.URI,
			"range": map[string]interface{}{
				"start": map[string]uint32{"line": start.Row, "character": start.Column},
				"end":   map[string]uint32{"line": match.Token.Range.EndPoint.Row, "character": match.Token.Range.EndPoint.Column},
			},
		},
	}
}

func (s *Server) handleCompletion(req Request) *Response {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, fmt.Sprintf("invalid completion params: %v", err))
	}

	items, err := s.completion.Complete(p.TextDocument.URI, p.Position.toPoint())
	if err != nil {
		return errorResponse(req.ID, -32603, fmt.Sprintf("completion failed: %v", err))
	}
	if len(items) == 0 {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: nil}
	}

	result := make([]map[string]interface{}, len(items))
	for i, item := range items {
		entry := map[string]interface{}{
			"label": item.Label,
			"kind":  completionItemKind(item.Kind),
		}
		if item.Documentation != "" {
			entry["documentation"] = item.Documentation
		}
		if item.InsertText != "" {
			entry["insertText"] = item.InsertText
		}
		if item.IsSnippet {
			entry["insertTextFormat"] = 2 // Snippet
		}
		if item.Detail != "" {
			entry["labelDetails"] = map[string]string{"description": item.Detail}
		}
		result[i] = entry
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"isIncomplete": false,
			"items":        result,
		},
	}
}

func completionItemKind(k completion.Kind) int {
	switch k {
	case completion.KindSnippet:
		return 15 // Snippet
	default:
		return 18 // Reference
	}
}

type codeActionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Range        struct {
		Start lspPosition `json:"start"`
	} `json:"range"`
}

func (s *Server) handleCodeAction(req Request) *Response {
	var p codeActionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, fmt.Sprintf("invalid code action params: %v", err))
	}

	doc := s.store.Get(p.TextDocument.URI)
	if doc == nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}
	extractor := s.store.ExtractorFor(doc.Kind)
	if extractor == nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}

	actions, err := codeaction.ForCursor(doc, extractor, p.Range.Start.toPoint())
	if err != nil {
		return errorResponse(req.ID, -32603, fmt.Sprintf("code action failed: %v", err))
	}

	result := make([]map[string]interface{}, len(actions))
	for i, a := range actions {
		result[i] = map[string]interface{}{
			"title": a.Title,
			"kind":  "refactor.inline",
			"edit": map[string]interface{}{
				"changes": map[string]interface{}{
					p.TextDocument.URI: []map[string]interface{}{
						{
							"range": map[string]interface{}{
								"start": map[string]uint32{"line": a.Edit.Range.StartPoint.Row, "character": a.Edit.Range.StartPoint.Column},
								"end":   map[string]uint32{"line": a.Edit.Range.EndPoint.Row, "character": a.Edit.Range.EndPoint.Column},
							},
							"newText": a.Edit.NewText,
						},
					},
				},
			},
			"isPreferred": true,
		}
	}

	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// IndexWorkspace runs the initial full scan and, if watchEnabled, starts
// the live re-index watcher. Grouped here rather than in the
// indexer package so callers only need one Server method at startup.
func (s *Server) IndexWorkspace(ctx context.Context, idx *indexer.Indexer, watchEnabled bool) (*indexer.Watcher, error) {
	if _, err := idx.ScanWorkspace(ctx); err != nil {
		return nil, err
	}
	if !watchEnabled {
		return nil, nil
	}
	watcher, err := indexer.NewWatcher(idx)
	if err != nil {
		return nil, err
	}
	go watcher.Run()
	return watcher, nil
}

