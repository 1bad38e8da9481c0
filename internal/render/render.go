// Package render turns a resolved store.Match into the Markdown hover text
// an editor displays, by substituting the resolved token's fields into a
// per-Kind template.
package render

import (
	"strings"

	"drupalls/internal/store"
	"drupalls/internal/token"
)

const classReferenceTemplate = `# Class reference

@see [@class_name](@class_name)
`

const serviceReferenceTemplate = "# Service reference: @name\n\n*Implementation:*\n```yaml\n@definition\n```\n\n@see [@uri](@uri)\n"

const serviceDefinitionTemplate = "# Service: @name\n\n*Class:* @class\n"

const routeReferenceTemplate = "# Route reference: @name\n\n*Implementation:*\n```yaml\n@definition\n```\n\n@see [@uri](@uri)\n"

const routeDefinitionTemplate = "# Route: @name\n\n*Path:* @path\n\n*Parameters:* @parameters\n"

const hookReferenceTemplate = "# Hook reference: @name\n\n*Implementation:*\n```php\n@definition\n```\n\n@see [@uri](@uri)\n"

const hookDefinitionTemplate = "# Hook: @name\n\n```php\n<?php function @name(@parameters) {}\n```\n"

const permissionReferenceTemplate = "# Permission reference: @name\n\n*Implementation:*\n```yaml\n@definition\n```\n\n@see [@uri](@uri)\n"

const permissionDefinitionTemplate = "# Permission: @name\nTitle: @title\n"

const methodReferenceTemplate = "# Method reference\n\n*Class:* @class_name\n*Method:* @name\n"

const pluginReferenceTemplate = "# Plugin reference: @name\n\n*Kind:* @class_name\n"

const translationStringTemplate = "# Translation string\n\n```\n@definition\n```\n\n*Placeholders:* @parameters\n"

// Hover renders the Markdown documentation string for a resolved match, or
// "" if the match's token carries no renderable documentation (Hover
// returning "" signals "no hover" to callers, matching the upstream
// protocol's "nothing to show" contract).
func Hover(match *store.Match) string {
	if match == nil || match.Token == nil {
		return ""
	}

	switch d := match.Token.Data.(type) {
	case token.ClassReference:
		return strings.ReplaceAll(classReferenceTemplate, "@class_name", d.Name.String())

	case token.ClassDefinition:
		return strings.ReplaceAll(classReferenceTemplate, "@class_name", d.Name.String())

	case token.MethodReference:
		name := d.ClassName.String()
		if name == "" {
			name = d.ServiceName
		}
		return replaceAll(methodReferenceTemplate, map[string]string{
			"@class_name": name,
			"@name":       d.Name,
		})

	case token.MethodDefinition:
		return replaceAll(methodReferenceTemplate, map[string]string{
			"@class_name": d.ClassName.String(),
			"@name":       d.Name,
		})

	case token.ServiceReference:
		return renderWithDefinition(serviceReferenceTemplate, match, d.Name, "")

	case token.ServiceDefinition:
		return replaceAll(serviceDefinitionTemplate, map[string]string{
			"@name":  d.Name,
			"@class": d.Class.String(),
		})

	case token.RouteReference:
		return renderWithDefinition(routeReferenceTemplate, match, d.Name, "")

	case token.RouteDefinition:
		params := d.RouteParameters()
		paramText := "none"
		if len(params) > 0 {
			paramText = strings.Join(params, ", ")
		}
		return replaceAll(routeDefinitionTemplate, map[string]string{
			"@name":       d.Name,
			"@path":       d.Path,
			"@parameters": paramText,
		})

	case token.HookReference:
		return renderWithDefinition(hookReferenceTemplate, match, d.Name, "")

	case token.HookDefinition:
		return replaceAll(hookDefinitionTemplate, map[string]string{
			"@name":       d.Name,
			"@parameters": d.Parameters,
		})

	case token.PermissionReference:
		return renderWithDefinition(permissionReferenceTemplate, match, d.Name, "")

	case token.PermissionDefinition:
		return replaceAll(permissionDefinitionTemplate, map[string]string{
			"@name":  d.Name,
			"@title": d.Title,
		})

	case token.PluginReference:
		return replaceAll(pluginReferenceTemplate, map[string]string{
			"@name":       d.ID,
			"@class_name": d.Kind.String(),
		})

	case token.TranslationString:
		return replaceAll(translationStringTemplate, map[string]string{
			"@definition": d.Template,
			"@parameters": strings.Join(d.Placeholders, ", "),
		})

	default:
		return ""
	}
}

// renderWithDefinition fills in a *Reference template's @name/@uri/@definition
// trio from the resolved definition's document and source range, matching
// the upstream documentation module's reference-to-definition rendering.
func renderWithDefinition(tmpl string, match *store.Match, name, fallback string) string {
	uri := ""
	definition := fallback
	if match.Document != nil {
		uri = match.Document.URI
		definition = string(sliceRange(match.Document.Content, match.Token.Range))
	}
	return replaceAll(tmpl, map[string]string{
		"@name":       name,
		"@uri":        uri,
		"@definition": definition,
	})
}

func sliceRange(content []byte, r token.Range) []byte {
	if int(r.EndByte) > len(content) || r.StartByte > r.EndByte {
		return nil
	}
	return content[r.StartByte:r.EndByte]
}

func replaceAll(tmpl string, values map[string]string) string {
	out := tmpl
	for placeholder, value := range values {
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return out
}
