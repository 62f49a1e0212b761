package conduit

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// SegmentType represents the type of a route pattern segment
type SegmentType int

const (
	StaticSegment SegmentType = iota
	ParamSegment
	WildcardSegment
)

// Segment represents a single segment of a route pattern
type Segment struct {
	Type      SegmentType
	Value     string // for static segments: the literal text, for parameters: the placeholder name
	ParamType string // for parameters: the declared type hint (e.g. "int"), empty for untyped
}

// RoutePattern is a parsed route pattern such as /users/{id:int}/files/{*}.
// Placeholder names are unique within one pattern; ParsePattern rejects
// duplicates. A RoutePattern is immutable after parsing.
type RoutePattern struct {
	raw          string
	segments     []Segment
	placeholders map[string]string // name -> type hint
}

// routeAST is the participle grammar for route patterns
type routeAST struct {
	Segments []*segmentAST `parser:"(Slash @@?)+"`
}

type segmentAST struct {
	Param   *paramAST `parser:"LBrace @@ RBrace"`
	Literal string    `parser:"| @((Ident | Text | Colon | Star)+)"`
}

type paramAST struct {
	Wildcard string `parser:"@Star"`
	Name     string `parser:"| @Ident"`
	Type     string `parser:"(Colon @Ident)?"`
}

var routeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Slash", Pattern: `/`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Text", Pattern: `[^/{}:*]+`},
})

var routeParser = participle.MustBuild[routeAST](
	participle.Lexer(routeLexer),
	participle.UseLookahead(2),
)

// ParsePattern parses a route pattern into its segments and placeholder set.
// Patterns must start with a slash. Placeholders use {name} or {name:type}
// syntax; {*} matches the rest of the path.
func ParsePattern(raw string) (RoutePattern, error) {
	if raw == "" {
		return RoutePattern{}, fmt.Errorf("route pattern must not be empty")
	}
	if !strings.HasPrefix(raw, "/") {
		return RoutePattern{}, fmt.Errorf("route pattern %q must start with '/'", raw)
	}

	ast, err := routeParser.ParseString("", raw)
	if err != nil {
		return RoutePattern{}, fmt.Errorf("invalid route pattern %q: %w", raw, err)
	}

	pattern := RoutePattern{
		raw:          raw,
		placeholders: make(map[string]string),
	}

	for _, seg := range ast.Segments {
		if seg == nil {
			continue
		}
		switch {
		case seg.Param != nil && seg.Param.Wildcard != "":
			pattern.segments = append(pattern.segments, Segment{
				Type:  WildcardSegment,
				Value: "*",
			})
		case seg.Param != nil:
			name := seg.Param.Name
			if name == "" {
				return RoutePattern{}, fmt.Errorf("invalid route pattern %q: empty placeholder name", raw)
			}
			if _, exists := pattern.placeholders[name]; exists {
				return RoutePattern{}, fmt.Errorf("invalid route pattern %q: duplicate placeholder %q", raw, name)
			}
			pattern.placeholders[name] = seg.Param.Type
			pattern.segments = append(pattern.segments, Segment{
				Type:      ParamSegment,
				Value:     name,
				ParamType: seg.Param.Type,
			})
		default:
			pattern.segments = append(pattern.segments, Segment{
				Type:  StaticSegment,
				Value: seg.Literal,
			})
		}
	}

	return pattern, nil
}

// MustParsePattern is like ParsePattern but panics on error. Intended for
// route tables declared at startup.
func MustParsePattern(raw string) RoutePattern {
	pattern, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return pattern
}

// Raw returns the original pattern text
func (p RoutePattern) Raw() string {
	return p.raw
}

// Segments returns the parsed segments in order
func (p RoutePattern) Segments() []Segment {
	return p.segments
}

// Placeholders returns the placeholder names in segment order
func (p RoutePattern) Placeholders() []string {
	names := make([]string, 0, len(p.placeholders))
	for _, seg := range p.segments {
		if seg.Type == ParamSegment {
			names = append(names, seg.Value)
		}
	}
	return names
}

// HasPlaceholder reports whether the pattern declares the named placeholder
func (p RoutePattern) HasPlaceholder(name string) bool {
	_, exists := p.placeholders[name]
	return exists
}

// PlaceholderType returns the type hint declared for the named placeholder,
// or the empty string when untyped or unknown
func (p RoutePattern) PlaceholderType(name string) string {
	return p.placeholders[name]
}

// String implements fmt.Stringer
func (p RoutePattern) String() string {
	return p.raw
}
