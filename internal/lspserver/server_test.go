package lspserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"drupalls/internal/document"
	"drupalls/internal/store"
	"drupalls/internal/token"
)

// TestMain guards against goroutines leaked by ServeStdio's read loop
// outliving the test that started it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedExtractor struct {
	all []*token.Token
	at  *token.Token
}

func (f *fixedExtractor) ExtractAll(content []byte, uri string) ([]*token.Token, error) {
	return f.all, nil
}

func (f *fixedExtractor) TokenAt(content []byte, uri string, p token.Point) (*token.Token, error) {
	return f.at, nil
}

func frame(t *testing.T, method string, id interface{}, params interface{}) string {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	req := Request{JSONRPC: "2.0", ID: id, Method: method, Params: raw}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestHandleInitializeReturnsCapabilities(t *testing.T) {
	st := store.New(nil)
	s := New(st)

	resp := s.handle(context.Background(), Request{JSONRPC: "2.0", ID: float64(1), Method: "initialize"})
	if resp == nil {
		t.Fatal("expected a response for initialize")
	}
	caps, ok := resp.Result.(map[string]interface{})["capabilities"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a capabilities map, got %#v", resp.Result)
	}
	if caps["hoverProvider"] != true {
		t.Errorf("expected hoverProvider = true, got %#v", caps["hoverProvider"])
	}
}

func TestHandleDidOpenStoresDocument(t *testing.T) {
	st := store.New(map[document.FileKind]document.Extractor{document.FileKindPHP: &fixedExtractor{}})
	s := New(st)

	params := map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":     "file:///a.php",
			"text":    "<?php\n",
			"version": 1,
		},
	}
	raw, _ := json.Marshal(params)
	resp := s.handle(context.Background(), Request{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: raw})
	if resp != nil {
		t.Errorf("expected no response for a didOpen notification, got %+v", resp)
	}
	if st.Get("file:///a.php") == nil {
		t.Fatal("expected the document to be stored")
	}
}

func TestHandleHoverReturnsMarkdownContents(t *testing.T) {
	svcTok := &token.Token{Data: token.ServiceDefinition{Name: "my.svc", Class: "Drupal\\mymodule\\MyService"}}
	yamlExt := &fixedExtractor{all: []*token.Token{svcTok}}
	phpExt := &fixedExtractor{at: &token.Token{Data: token.ServiceReference{Name: "my.svc"}}}

	st := store.New(map[document.FileKind]document.Extractor{
		document.FileKindYAML: yamlExt,
		document.FileKindPHP:  phpExt,
	})
	st.Put("file:///mymodule.services.yml", []byte("my.svc:\n  class: Foo\n"), 1)
	st.Put("file:///a.php", []byte("<?php"), 1)

	s := New(st)
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": "file:///a.php"},
		"position":     map[string]interface{}{"line": 0, "character": 1},
	}
	raw, _ := json.Marshal(params)
	resp := s.handle(context.Background(), Request{JSONRPC: "2.0", ID: float64(2), Method: "textDocument/hover", Params: raw})
	if resp == nil || resp.Result == nil {
		t.Fatalf("expected a hover result, got %+v", resp)
	}
	contents, ok := resp.Result.(map[string]interface{})["contents"].(map[string]string)
	if !ok {
		t.Fatalf("expected markdown contents, got %#v", resp.Result)
	}
	if !strings.Contains(contents["value"], "my.svc") {
		t.Errorf("hover text = %q, expected it to mention my.svc", contents["value"])
	}
}

func TestHandleShutdownIsRecognised(t *testing.T) {
	st := store.New(nil)
	s := New(st)

	resp := s.handle(context.Background(), Request{JSONRPC: "2.0", ID: float64(3), Method: "shutdown"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected a clean shutdown response, got %+v", resp)
	}
}

func TestServeStdioRoundTripsAnInitializeRequest(t *testing.T) {
	st := store.New(nil)
	s := New(st)

	input := frame(t, "initialize", float64(1), map[string]interface{}{})
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.ServeStdio(ctx, strings.NewReader(input), &out); err != nil {
		t.Fatalf("ServeStdio() error = %v", err)
	}
	if !strings.Contains(out.String(), "Content-Length:") {
		t.Errorf("expected a framed response, got %q", out.String())
	}
	if !strings.Contains(out.String(), "capabilities") {
		t.Errorf("expected capabilities in the response, got %q", out.String())
	}
}
