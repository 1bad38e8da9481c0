// Package token defines the typed, range-carrying symbol records produced by
// the PHP and YAML extractors and consumed by the document store, resolver,
// and the hover/completion/code-action engines built on top of it.
package token

import (
	"regexp"
	"strings"
)

// routeParameterPattern matches a `{parameter}` placeholder segment in a
// route path, e.g. "node/{node}/edit" -> "node".
var routeParameterPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Point is a (row, column) position in UTF-8 character units, matching the
// tree-sitter / editor-protocol convention.
type Point struct {
	Row    uint32
	Column uint32
}

// Range is a byte-offset and point span into a Document's content. Ranges are
// only valid until the next parse of the Document they came from.
type Range struct {
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
}

// Contains reports whether p falls within the range, inclusive on both ends.
func (r Range) Contains(p Point) bool {
	if p.Row < r.StartPoint.Row || p.Row > r.EndPoint.Row {
		return false
	}
	if p.Row == r.StartPoint.Row && p.Column < r.StartPoint.Column {
		return false
	}
	if p.Row == r.EndPoint.Row && p.Column > r.EndPoint.Column {
		return false
	}
	return true
}

// Kind tags the variant carried by a Token's Data. It is a closed set; every
// consumer switches over it exhaustively rather than type-asserting blindly.
type Kind int

const (
	KindClassDefinition Kind = iota
	KindMethodDefinition
	KindClassReference
	KindMethodReference
	KindHookDefinition
	KindHookReference
	KindServiceDefinition
	KindServiceReference
	KindRouteDefinition
	KindRouteReference
	KindPermissionDefinition
	KindPermissionReference
	KindPluginReference
	KindTranslationString
)

func (k Kind) String() string {
	switch k {
	case KindClassDefinition:
		return "ClassDefinition"
	case KindMethodDefinition:
		return "MethodDefinition"
	case KindClassReference:
		return "ClassReference"
	case KindMethodReference:
		return "MethodReference"
	case KindHookDefinition:
		return "HookDefinition"
	case KindHookReference:
		return "HookReference"
	case KindServiceDefinition:
		return "ServiceDefinition"
	case KindServiceReference:
		return "ServiceReference"
	case KindRouteDefinition:
		return "RouteDefinition"
	case KindRouteReference:
		return "RouteReference"
	case KindPermissionDefinition:
		return "PermissionDefinition"
	case KindPermissionReference:
		return "PermissionReference"
	case KindPluginReference:
		return "PluginReference"
	case KindTranslationString:
		return "TranslationString"
	default:
		return "Unknown"
	}
}

// Data is the sum type of token payloads. Implementations live in this file;
// the set is closed, so switch statements over Kind() are expected to be
// exhaustive rather than growing a new subclass.
type Data interface {
	Kind() Kind
}

// Token pairs a payload with the source range it was extracted from.
type Token struct {
	Range Range
	Data  Data
}

// QualifiedName is a canonicalised, fully-qualified PHP class/namespace name:
// surrounding quotes and leading/trailing backslash separators are stripped.
type QualifiedName string

// NewQualifiedName trims the quote/backslash noise a raw AST or YAML scalar
// carries around a class name, e.g. "'\Drupal\node\Entity\Node\'" becomes
// "Drupal\node\Entity\Node".
func NewQualifiedName(raw string) QualifiedName {
	return QualifiedName(strings.Trim(raw, "'\\"))
}

func (q QualifiedName) String() string { return string(q) }

// ClassDefinition declares a PHP class. Methods owns its MethodDefinition
// child tokens, keyed by method name; those tokens must not outlive this
// Document's tokens.
type ClassDefinition struct {
	Name      QualifiedName
	Attribute ClassAttribute // nil if the class carries no recognised attribute
	Methods   map[string]*Token
}

func (ClassDefinition) Kind() Kind { return KindClassDefinition }

// ClassAttribute is the closed set of Framework-specific class roles
// detected via an attribute list or doc-comment annotation. It is modeled
// as an interface (rather than a field per possible role) so that adding a
// role later is a new implementation, not a new field to thread through
// every switch.
type ClassAttribute interface {
	isClassAttribute()
}

// PluginKind is the closed set of Drupal plugin annotation/attribute labels
// the extractor recognises.
type PluginKind int

const (
	PluginEntityType PluginKind = iota
	PluginQueueWorker
	PluginFieldType
	PluginDataType
	PluginFormElement
	PluginRenderElement
)

func (k PluginKind) String() string {
	switch k {
	case PluginEntityType:
		return "EntityType"
	case PluginQueueWorker:
		return "QueueWorker"
	case PluginFieldType:
		return "FieldType"
	case PluginDataType:
		return "DataType"
	case PluginFormElement:
		return "FormElement"
	case PluginRenderElement:
		return "RenderElement"
	default:
		return "Unknown"
	}
}

// PluginKindFromLabel maps an annotation-type label (e.g. "ContentEntityType",
// "QueueWorker") to its PluginKind. ok is false for any unrecognised label.
func PluginKindFromLabel(label string) (kind PluginKind, ok bool) {
	switch label {
	case "ContentEntityType", "ConfigEntityType":
		return PluginEntityType, true
	case "QueueWorker":
		return PluginQueueWorker, true
	case "FieldType":
		return PluginFieldType, true
	case "DataType":
		return PluginDataType, true
	case "FormElement":
		return PluginFormElement, true
	case "RenderElement":
		return PluginRenderElement, true
	default:
		return 0, false
	}
}

// PluginAttribute is the sole current ClassAttribute implementation: a class
// tagged as a Drupal plugin of some kind, with the id it registers under and
// an optional usage-example pulled from its doc comment's @code/@endcode
// block.
type PluginAttribute struct {
	Kind         PluginKind
	ID           string
	UsageExample string
}

func (PluginAttribute) isClassAttribute() {}

// MethodDefinition declares a method inside a class body. ClassName is empty
// only for method tokens that have not yet been attached to an owning class
// (which should not happen for tokens the extractor emits directly).
type MethodDefinition struct {
	Name      string
	ClassName QualifiedName
}

func (MethodDefinition) Kind() Kind { return KindMethodDefinition }

// ClassReference mentions a class by qualified name, expecting to resolve to
// a ClassDefinition elsewhere in the workspace.
type ClassReference struct {
	Name QualifiedName
}

func (ClassReference) Kind() Kind { return KindClassReference }

// MethodReference mentions a method, either via an explicit owning class or
// via an owning service (whose class must be looked up first).
type MethodReference struct {
	Name        string
	ClassName   QualifiedName
	ServiceName string // empty when ClassName is set
}

func (MethodReference) Kind() Kind { return KindMethodReference }

// ParseMethodReference parses strings of the form "Class::method" (optionally
// wrapped in quotes and/or a leading backslash) into a MethodReference. ok is
// false when the trimmed string contains no "::" separator.
func ParseMethodReference(raw string) (ref MethodReference, ok bool) {
	trimmed := strings.Trim(raw, "'\\")
	class, method, found := strings.Cut(trimmed, "::")
	if !found {
		return MethodReference{}, false
	}
	return MethodReference{
		Name:      method,
		ClassName: NewQualifiedName(class),
	}, true
}

// HookDefinition declares a Drupal hook implementation: a function whose
// name starts with "hook".
type HookDefinition struct {
	Name       string
	Parameters string
}

func (HookDefinition) Kind() Kind { return KindHookDefinition }

// HookReference is a "Implements hook_X()." doc-comment mention of a hook.
type HookReference struct {
	Name string
}

func (HookReference) Kind() Kind { return KindHookReference }

// ServiceDefinition declares a service in a *.services.yml file. Arguments
// preserves the raw `arguments:` flow-sequence entries (service names and
// other scalars) even though only the class is consulted by resolution.
type ServiceDefinition struct {
	Name      string
	Class     QualifiedName
	Arguments []string
}

func (ServiceDefinition) Kind() Kind { return KindServiceDefinition }

// ServiceReference mentions a service by its registered name.
type ServiceReference struct {
	Name string
}

func (ServiceReference) Kind() Kind { return KindServiceReference }

// RouteDefaults carries the optional controller/form/title fields of a
// route's `defaults:` mapping. The record is preserved whole; resolution,
// hover and completion do not read any of its fields. `_form` fills both
// Form (as a class name) and EntityForm (as the raw text).
type RouteDefaults struct {
	Controller *MethodReference
	Form       *QualifiedName
	EntityForm *string
	Title      *string
}

// RouteDefinition declares a named route in a *.routing.yml file.
type RouteDefinition struct {
	Name     string
	Path     string
	Defaults RouteDefaults
}

func (RouteDefinition) Kind() Kind { return KindRouteDefinition }

// RouteParameters returns the placeholder names in the route's path, in
// the order they appear, e.g. "node/{node}/edit" -> ["node"].
func (r RouteDefinition) RouteParameters() []string {
	matches := routeParameterPattern.FindAllStringSubmatch(r.Path, -1)
	if len(matches) == 0 {
		return nil
	}
	params := make([]string, len(matches))
	for i, m := range matches {
		params[i] = m[1]
	}
	return params
}

// RouteReference mentions a route by name.
type RouteReference struct {
	Name string
}

func (RouteReference) Kind() Kind { return KindRouteReference }

// PermissionDefinition declares a permission in a *.permissions.yml file.
type PermissionDefinition struct {
	Name  string
	Title string
}

func (PermissionDefinition) Kind() Kind { return KindPermissionDefinition }

// PermissionReference mentions a permission by name.
type PermissionReference struct {
	Name string
}

func (PermissionReference) Kind() Kind { return KindPermissionReference }

// PluginReference mentions a plugin by kind and id, e.g. a
// `$queueFactory->get('my_queue')` call.
type PluginReference struct {
	Kind PluginKind
	ID   string
}

func (PluginReference) Kind() Kind { return KindPluginReference }

// TranslationString is a t('...') call's template, with the placeholder
// tokens (`@name`, `%count`, `:url`, ...) it contains already extracted.
type TranslationString struct {
	Template     string
	Placeholders []string
}

func (TranslationString) Kind() Kind { return KindTranslationString }
