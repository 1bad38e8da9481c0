// Package yamlsymbols implements the configuration extractor: a
// tree-sitter-yaml walk over Drupal's *.services.yml, *.routing.yml and
// *.permissions.yml conventions.
package yamlsymbols

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/yaml"

	"drupalls/internal/document"
	"drupalls/internal/logging"
	"drupalls/internal/token"
)

// Extractor drives a single tree-sitter-yaml parser. Parses are serialised
// by an internal mutex, so one Extractor can be shared across goroutines.
type Extractor struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewExtractor returns an Extractor ready to parse YAML source.
func NewExtractor() *Extractor {
	p := sitter.NewParser()
	p.SetLanguage(yaml.GetLanguage())
	return &Extractor{parser: p}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

var _ document.Extractor = (*Extractor)(nil)

type yamlContext struct {
	src []byte
	uri string
}

// ExtractAll walks every block_mapping_pair in the document and classifies
// it per the service/route/permission conventions.
func (e *Extractor) ExtractAll(content []byte, uri string) ([]*token.Token, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("yamlsymbols: parse %s: %w", uri, err)
	}
	defer tree.Close()

	ctx := &yamlContext{src: content, uri: uri}
	var out []*token.Token
	walk(tree.RootNode(), ctx, &out)
	logging.Get(logging.CategoryExtractorYAML).Debug("extracted %d tokens from %s", len(out), uri)
	return out, nil
}

// TokenAt resolves the smallest node containing p and ascends applying the
// same block_mapping_pair recogniser, plus the cursor-only `arguments:`
// sequence-item recogniser.
func (e *Extractor) TokenAt(content []byte, uri string, p token.Point) (*token.Token, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("yamlsymbols: parse %s: %w", uri, err)
	}
	defer tree.Close()

	ctx := &yamlContext{src: content, uri: uri}
	node := smallestNodeContaining(tree.RootNode(), p)
	for node != nil {
		if tok := recognizeCursor(node, ctx, &p); tok != nil {
			return tok, nil
		}
		node = node.Parent()
	}
	return nil, nil
}

func walk(node *sitter.Node, ctx *yamlContext, acc *[]*token.Token) {
	if node.Type() == "block_mapping_pair" {
		if tok := parseBlockMappingPair(node, ctx, nil); tok != nil {
			*acc = append(*acc, tok)
			return
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), ctx, acc)
	}
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

func recognizeCursor(n *sitter.Node, ctx *yamlContext, p *token.Point) *token.Token {
	if n.Type() != "block_mapping_pair" {
		return nil
	}
	return parseBlockMappingPair(n, ctx, p)
}

func parseBlockMappingPair(n *sitter.Node, ctx *yamlContext, cursor *token.Point) *token.Token {
	keyNode := n.ChildByFieldName("key")
	valueNode := n.ChildByFieldName("value")
	if keyNode == nil {
		return nil
	}
	key := scalarText(keyNode, ctx.src)

	if valueNode != nil {
		if m := blockNodeMapSrc(valueNode, ctx.src); m != nil {
			switch {
			case strings.HasSuffix(ctx.uri, ".permissions.yml"):
				if title, ok := m["title"]; ok {
					return &token.Token{
						Range: nodeRange(n),
						Data:  token.PermissionDefinition{Name: key, Title: scalarText(title, ctx.src)},
					}
				}
			}
			if pathNode, hasPath := m["path"]; hasPath {
				if defaultsNode, hasDefaults := m["defaults"]; hasDefaults {
					return &token.Token{
						Range: nodeRange(n),
						Data: token.RouteDefinition{
							Name:     key,
							Path:     scalarText(pathNode, ctx.src),
							Defaults: parseRouteDefaults(defaultsNode, ctx.src),
						},
					}
				}
			}
			if classNode, hasClass := m["class"]; hasClass {
				return &token.Token{
					Range: nodeRange(n),
					Data: token.ServiceDefinition{
						Name:      key,
						Class:     token.NewQualifiedName(scalarText(classNode, ctx.src)),
						Arguments: flowSequenceStrings(m["arguments"], ctx.src),
					},
				}
			}
		}
	}

	switch key {
	case "_controller":
		if ref, ok := token.ParseMethodReference(scalarText(valueNode, ctx.src)); ok {
			return &token.Token{Range: nodeRange(n), Data: ref}
		}
	case "_form", "class":
		return &token.Token{
			Range: nodeRange(n),
			Data:  token.ClassReference{Name: token.NewQualifiedName(scalarText(valueNode, ctx.src))},
		}
	case "_permission":
		return &token.Token{
			Range: nodeRange(n),
			Data:  token.PermissionReference{Name: strings.Trim(scalarText(valueNode, ctx.src), "'")},
		}
	case "route_name":
		return &token.Token{
			Range: nodeRange(n),
			Data:  token.RouteReference{Name: strings.Trim(scalarText(valueNode, ctx.src), "'")},
		}
	case "arguments":
		if cursor != nil && valueNode != nil {
			if item := singleQuotedItemAt(valueNode, *cursor, ctx.src); item != "" {
				return &token.Token{
					Range: nodeRange(n),
					Data:  token.ServiceReference{Name: strings.TrimPrefix(strings.Trim(item, "'"), "@")},
				}
			}
		}
	}

	return nil
}

func blockNodeMapSrc(valueNode *sitter.Node, src []byte) map[string]*sitter.Node {
	if valueNode == nil || valueNode.Type() != "block_node" {
		return nil
	}
	if valueNode.NamedChildCount() == 0 {
		return nil
	}
	mapping := valueNode.NamedChild(0)
	if mapping.Type() != "block_mapping" {
		return nil
	}
	out := map[string]*sitter.Node{}
	for i := 0; i < int(mapping.NamedChildCount()); i++ {
		pair := mapping.NamedChild(i)
		if pair.Type() != "block_mapping_pair" {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		valNode := pair.ChildByFieldName("value")
		if keyNode == nil || valNode == nil {
			continue
		}
		out[scalarText(keyNode, src)] = valNode
	}
	return out
}

func parseRouteDefaults(defaultsNode *sitter.Node, src []byte) token.RouteDefaults {
	var defaults token.RouteDefaults
	m := blockNodeMapSrc(defaultsNode, src)
	if controller, ok := m["_controller"]; ok {
		if ref, ok := token.ParseMethodReference(scalarText(controller, src)); ok {
			defaults.Controller = &ref
		}
	}
	if form, ok := m["_form"]; ok {
		qn := token.NewQualifiedName(scalarText(form, src))
		defaults.Form = &qn
		entityForm := scalarText(form, src)
		defaults.EntityForm = &entityForm
	}
	if title, ok := m["_title"]; ok {
		t := scalarText(title, src)
		defaults.Title = &t
	}
	return defaults
}

func flowSequenceStrings(seqNode *sitter.Node, src []byte) []string {
	if seqNode == nil {
		return nil
	}
	node := seqNode
	if node.Type() == "block_node" && node.NamedChildCount() > 0 {
		node = node.NamedChild(0)
	}
	if node.Type() != "flow_sequence" {
		return nil
	}
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, scalarText(node.NamedChild(i), src))
	}
	return out
}

func singleQuotedItemAt(seqNode *sitter.Node, p token.Point, src []byte) string {
	node := seqNode
	if node.Type() == "block_node" && node.NamedChildCount() > 0 {
		node = node.NamedChild(0)
	}
	if node.Type() != "flow_sequence" && node.Type() != "block_sequence" {
		return ""
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		item := node.NamedChild(i)
		if item.Type() == "single_quote_scalar" && pointInNode(item, p) {
			return nodeText(item, src)
		}
	}
	return ""
}

func scalarText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return strings.Trim(nodeText(n, src), "'\"")
}
