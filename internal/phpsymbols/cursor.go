package phpsymbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"drupalls/internal/token"
)

// parseNodeCursor is the cursor-mode node recogniser: it recognises
// everything ExtractAll's processNode does, plus the narrow set of
// call-expression idioms that only make sense to resolve when the cursor
// is actually sitting on one (they are not part of the document's static
// token set because most of them are uninteresting outside the position
// the user is asking about).
func parseNodeCursor(n *sitter.Node, ctx *phpContext, p *token.Point) *token.Token {
	switch n.Type() {
	case "class_declaration":
		return handleClass(n, enclosingNamespace(n, ctx), ctx)
	case "method_declaration":
		if class := enclosingClassName(n, ctx); class != "" {
			return handleMethod(n, class, ctx)
		}
		return nil
	case "function_definition":
		return handleFunctionDefinition(n, ctx)
	case "comment":
		return handleComment(n, ctx)
	case "member_call_expression", "scoped_call_expression":
		return parseCallExpression(n, ctx, p)
	default:
		return nil
	}
}

func enclosingNamespace(n *sitter.Node, ctx *phpContext) string {
	for sib := n.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
		if sib.Type() == "namespace_definition" {
			if nameNode := sib.ChildByFieldName("name"); nameNode != nil {
				return nodeText(nameNode, ctx.src)
			}
		}
	}
	return ""
}

func enclosingClassName(n *sitter.Node, ctx *phpContext) token.QualifiedName {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_declaration" {
			nameNode := p.ChildByFieldName("name")
			if nameNode == nil {
				return ""
			}
			return qualify(enclosingNamespace(p, ctx), nodeText(nameNode, ctx.src))
		}
	}
	return ""
}

// parseCallExpression only fires when the cursor point actually falls
// inside a string_content descendant of the call, mirroring the original's
// requirement that the point land on the argument text itself.
func parseCallExpression(n *sitter.Node, ctx *phpContext, p *token.Point) *token.Token {
	if !pointInsideStringArgument(n, *p) {
		return nil
	}

	methodNode := n.ChildByFieldName("name")
	if methodNode == nil {
		return nil
	}
	method := nodeText(methodNode, ctx.src)

	receiverNode := n.ChildByFieldName("object")
	if receiverNode == nil {
		receiverNode = n.ChildByFieldName("scope")
	}
	receiverText := ""
	if receiverNode != nil {
		receiverText = nodeText(receiverNode, ctx.src)
	}

	arg := firstStringArgument(n, ctx)

	switch {
	case method == "fromRoute" || method == "createFromRoute" || method == "setRedirect":
		return wrapToken(n, token.RouteReference{Name: arg})
	case method == "service":
		return wrapToken(n, token.ServiceReference{Name: arg})
	case method == "hasPermission":
		return wrapToken(n, token.PermissionReference{Name: arg})
	case method == "get" && receiverText == "$container":
		return wrapToken(n, token.ServiceReference{Name: arg})
	case method == "get" && strings.Contains(receiverText, "queueFactory"):
		return wrapToken(n, token.PluginReference{Kind: token.PluginQueueWorker, ID: arg})
	case method == "getStorage" && strings.Contains(receiverText, "entityTypeManager"):
		return wrapToken(n, token.PluginReference{Kind: token.PluginEntityType, ID: arg})
	case method == "create" && strings.Contains(receiverText, "BaseFieldDefinition"):
		return wrapToken(n, token.PluginReference{Kind: token.PluginFieldType, ID: arg})
	case method == "create" && strings.Contains(receiverText, "DataDefinition"):
		return wrapToken(n, token.PluginReference{Kind: token.PluginDataType, ID: arg})
	case method == "queue":
		return wrapToken(n, token.PluginReference{Kind: token.PluginQueueWorker, ID: arg})
	case method == "t":
		return wrapToken(n, token.TranslationString{Template: arg, Placeholders: translationPlaceholders(arg)})
	}

	if strings.Contains(receiverText, "Drupal::service(") {
		service := extractServiceNameFromCall(receiverText)
		return wrapToken(n, token.MethodReference{Name: method, ServiceName: service})
	}

	return nil
}

func wrapToken(n *sitter.Node, data token.Data) *token.Token {
	return &token.Token{Range: nodeRange(n), Data: data}
}

func pointInsideStringArgument(n *sitter.Node, p token.Point) bool {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if isStringNode(arg) && pointInNode(arg, p) {
			return true
		}
		for j := 0; j < int(arg.NamedChildCount()); j++ {
			inner := arg.NamedChild(j)
			if inner.Type() == "string_content" && pointInNode(inner, p) {
				return true
			}
		}
	}
	return false
}

func isStringNode(n *sitter.Node) bool {
	switch n.Type() {
	case "string", "encapsed_string":
		return true
	default:
		return false
	}
}

func firstStringArgument(n *sitter.Node, ctx *phpContext) string {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if isStringNode(arg) {
			return strings.Trim(nodeText(arg, ctx.src), "'\"")
		}
	}
	return ""
}

var placeholderPrefixes = "@%:"

func translationPlaceholders(template string) []string {
	var out []string
	var current strings.Builder
	inPlaceholder := false
	flush := func() {
		if inPlaceholder && current.Len() > 0 {
			out = append(out, current.String())
		}
		current.Reset()
		inPlaceholder = false
	}
	for _, r := range template {
		if strings.ContainsRune(placeholderPrefixes, r) {
			flush()
			inPlaceholder = true
			current.WriteRune(r)
			continue
		}
		if inPlaceholder {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				current.WriteRune(r)
				continue
			}
			flush()
		}
	}
	flush()
	return out
}

func extractServiceNameFromCall(text string) string {
	idx := strings.Index(text, "Drupal::service(")
	if idx < 0 {
		return ""
	}
	rest := text[idx+len("Drupal::service("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return ""
	}
	return strings.Trim(rest[:end], "'\"")
}
