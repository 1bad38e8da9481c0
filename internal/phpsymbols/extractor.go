// Package phpsymbols implements the imperative-language extractor: a
// tree-sitter-php walk that turns PHP source into class/method/hook
// definitions and references, plus a cursor-mode pass that additionally
// recognises a narrow set of call-expression idioms (service(), t(),
// fromRoute(), ...).
package phpsymbols

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"drupalls/internal/document"
	"drupalls/internal/logging"
	"drupalls/internal/token"
)

// Extractor drives a single tree-sitter-php parser. Parses are serialised by
// an internal mutex, so one Extractor can be shared by the indexer's workers,
// the watcher and the store.
type Extractor struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewExtractor returns an Extractor ready to parse PHP source.
func NewExtractor() *Extractor {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	return &Extractor{parser: p}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

var _ document.Extractor = (*Extractor)(nil)

type phpContext struct {
	src []byte
	uri string
}

// ExtractAll returns the top-level token sequence for a PHP source file:
// class/hook definitions and hook-implementation doc-comment references.
// Call-expression references are only produced by TokenAt, in cursor mode.
func (e *Extractor) ExtractAll(content []byte, uri string) ([]*token.Token, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("phpsymbols: parse %s: %w", uri, err)
	}
	defer tree.Close()

	ctx := &phpContext{src: content, uri: uri}
	var out []*token.Token
	processChildren(tree.RootNode(), "", ctx, &out)
	logDebug("extracted %d tokens from %s", len(out), uri)
	return out, nil
}

// TokenAt locates the smallest tree node containing p, then ascends the
// parent chain re-running the per-node recognisers (this time including the
// cursor-only call-expression heuristics) until one produces a token or the
// root is reached.
func (e *Extractor) TokenAt(content []byte, uri string, p token.Point) (*token.Token, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("phpsymbols: parse %s: %w", uri, err)
	}
	defer tree.Close()

	ctx := &phpContext{src: content, uri: uri}
	node := smallestNodeContaining(tree.RootNode(), p)
	for node != nil {
		if tok := parseNodeCursor(node, ctx, &p); tok != nil {
			return tok, nil
		}
		node = node.Parent()
	}
	return nil, nil
}

func smallestNodeContaining(root *sitter.Node, p token.Point) *sitter.Node {
	if !pointInNode(root, p) {
		return nil
	}
	node := root
	for {
		var next *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if pointInNode(child, p) {
				next = child
				break
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
}

func pointInNode(n *sitter.Node, p token.Point) bool {
	start, end := n.StartPoint(), n.EndPoint()
	if p.Row < start.Row || p.Row > end.Row {
		return false
	}
	if p.Row == start.Row && p.Column < start.Column {
		return false
	}
	if p.Row == end.Row && p.Column > end.Column {
		return false
	}
	return true
}

func nodeRange(n *sitter.Node) token.Range {
	start, end := n.StartPoint(), n.EndPoint()
	return token.Range{
		StartByte:  n.StartByte(),
		EndByte:    n.EndByte(),
		StartPoint: token.Point{Row: start.Row, Column: start.Column},
		EndPoint:   token.Point{Row: end.Row, Column: end.Column},
	}
}

func nodeText(n *sitter.Node, src []byte) string {
	return n.Content(src)
}

// processChildren walks node's named children in source order, tracking the
// innermost enclosing namespace the way a sequence of sibling declarations
// does in a real PHP file: a semicolon-form `namespace X;` updates the
// namespace for everything that follows it in the same body; a braced
// `namespace X { ... }` recurses with that namespace scoped to its body only.
func processChildren(node *sitter.Node, namespace string, ctx *phpContext, out *[]*token.Token) {
	currentNS := namespace
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			nameNode := child.ChildByFieldName("name")
			ns := currentNS
			if nameNode != nil {
				ns = nodeText(nameNode, ctx.src)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				processChildren(body, ns, ctx, out)
			} else {
				currentNS = ns
			}
		default:
			if tok := processNode(child, currentNS, ctx, out); tok != nil {
				*out = append(*out, tok)
				continue
			}
			processChildren(child, currentNS, ctx, out)
		}
	}
}

// processNode recognises the non-cursor token-producing node kinds. It
// returns nil (and the caller keeps descending) for everything else.
func processNode(n *sitter.Node, namespace string, ctx *phpContext, out *[]*token.Token) *token.Token {
	switch n.Type() {
	case "class_declaration":
		return handleClass(n, namespace, ctx)
	case "function_definition":
		return handleFunctionDefinition(n, ctx)
	case "comment":
		return handleComment(n, ctx)
	default:
		return nil
	}
}

func qualify(namespace, name string) token.QualifiedName {
	if namespace == "" {
		return token.NewQualifiedName(name)
	}
	return token.NewQualifiedName(namespace + "\\" + name)
}

func handleClass(n *sitter.Node, namespace string, ctx *phpContext) *token.Token {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	qname := qualify(namespace, nodeText(nameNode, ctx.src))

	methods := map[string]*token.Token{}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() != "method_declaration" {
				continue
			}
			if m := handleMethod(member, qname, ctx); m != nil {
				if md, ok := m.Data.(token.MethodDefinition); ok {
					methods[md.Name] = m
				}
			}
		}
	}

	attr := classAttribute(n, ctx)

	return &token.Token{
		Range: nodeRange(n),
		Data: token.ClassDefinition{
			Name:      qname,
			Attribute: attr,
			Methods:   methods,
		},
	}
}

func handleMethod(n *sitter.Node, className token.QualifiedName, ctx *phpContext) *token.Token {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &token.Token{
		Range: nodeRange(n),
		Data: token.MethodDefinition{
			Name:      nodeText(nameNode, ctx.src),
			ClassName: className,
		},
	}
}

func handleFunctionDefinition(n *sitter.Node, ctx *phpContext) *token.Token {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, ctx.src)
	if !strings.HasPrefix(name, "hook") {
		return nil
	}
	paramsText := ""
	if params := n.ChildByFieldName("parameters"); params != nil {
		paramsText = strings.TrimSuffix(strings.TrimPrefix(nodeText(params, ctx.src), "("), ")")
	}
	return &token.Token{
		Range: nodeRange(n),
		Data:  token.HookDefinition{Name: name, Parameters: paramsText},
	}
}

const implementsMarker = "Implements hook_"

func handleComment(n *sitter.Node, ctx *phpContext) *token.Token {
	text := nodeText(n, ctx.src)
	idx := strings.Index(text, implementsMarker)
	if idx < 0 {
		return nil
	}
	rest := text[idx+len("Implements "):]
	end := strings.Index(rest, "()")
	if end < 0 {
		return nil
	}
	return &token.Token{
		Range: nodeRange(n),
		Data:  token.HookReference{Name: rest[:end]},
	}
}

var pluginAnnotationRe = regexp.MustCompile(`@(\w+)\(`)
var pluginIDRe = regexp.MustCompile(`id\s*=\s*"([^"]+)"`)

// classAttribute determines a class's Drupal plugin role: first from a
// PHP 8 attribute list, falling back to a doc-comment `@Label(id = "...")`
// annotation.
func classAttribute(classNode *sitter.Node, ctx *phpContext) token.ClassAttribute {
	if attrs := attributeList(classNode); attrs != nil {
		if attr := pluginFromAttributeList(attrs, ctx); attr != nil {
			return attr
		}
	}
	if doc := precedingDocComment(classNode, ctx); doc != "" {
		return pluginFromDocComment(doc)
	}
	return nil
}

// attributeList finds a PHP 8 `#[...]` attribute list immediately preceding
// the class declaration, if the grammar surfaces one as a previous sibling.
func attributeList(classNode *sitter.Node) *sitter.Node {
	sib := classNode.PrevSibling()
	if sib != nil && sib.Type() == "attribute_list" {
		return sib
	}
	return nil
}

func pluginFromAttributeList(attrs *sitter.Node, ctx *phpContext) token.ClassAttribute {
	for i := 0; i < int(attrs.NamedChildCount()); i++ {
		group := attrs.NamedChild(i)
		for j := 0; j < int(group.NamedChildCount()); j++ {
			attr := group.NamedChild(j)
			nameNode := attr.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			label := nodeText(nameNode, ctx.src)
			kind, ok := token.PluginKindFromLabel(label)
			if !ok {
				continue
			}
			argsText := ""
			if args := attr.ChildByFieldName("arguments"); args != nil {
				argsText = nodeText(args, ctx.src)
			}
			id := extractArgumentID(argsText)
			return token.PluginAttribute{Kind: kind, ID: id}
		}
	}
	return nil
}

func extractArgumentID(argsText string) string {
	if m := pluginIDRe.FindStringSubmatch(argsText); m != nil {
		return m[1]
	}
	// Fall back to a bare leading single-quoted positional argument:
	// #[EntityType('node')]
	trimmed := strings.TrimPrefix(strings.TrimSuffix(argsText, ")"), "(")
	first := strings.TrimSpace(strings.SplitN(trimmed, ",", 2)[0])
	if len(first) >= 2 && first[0] == '\'' && first[len(first)-1] == '\'' {
		return first[1 : len(first)-1]
	}
	return ""
}

func precedingDocComment(n *sitter.Node, ctx *phpContext) string {
	sib := n.PrevSibling()
	if sib != nil && sib.Type() == "comment" {
		return nodeText(sib, ctx.src)
	}
	return ""
}

var usageExampleRe = regexp.MustCompile(`(?s)@code(.*?)@endcode`)

func pluginFromDocComment(doc string) token.ClassAttribute {
	m := pluginAnnotationRe.FindStringSubmatch(doc)
	if m == nil {
		return nil
	}
	kind, ok := token.PluginKindFromLabel(m[1])
	if !ok {
		return nil
	}
	idMatch := pluginIDRe.FindStringSubmatch(doc)
	if idMatch == nil {
		return nil
	}
	usage := ""
	if u := usageExampleRe.FindStringSubmatch(doc); u != nil {
		usage = strings.TrimSpace(u[1])
	}
	return token.PluginAttribute{Kind: kind, ID: idMatch[1], UsageExample: usage}
}

// logDebug is a package-level convenience logger; most calls happen at most once
// per document parse so a fresh Get() per call is cheap enough.
func logDebug(format string, args ...interface{}) {
	logging.Get(logging.CategoryExtractorPHP).Debug(format, args...)
}
