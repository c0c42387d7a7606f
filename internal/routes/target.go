package routes

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// targetRef is the grammar for "controller#action" route targets, with an
// optionally module-qualified controller: admin/users#show
type targetRef struct {
	Controller []string `parser:"@Ident ( Slash @Ident )*"`
	Action     string   `parser:"Hash @Ident"`
}

var targetLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_!?]*`},
	{Name: "Slash", Pattern: `/`},
	{Name: "Hash", Pattern: `#`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var targetParser = participle.MustBuild[targetRef](
	participle.Lexer(targetLexer),
	participle.Elide("Whitespace"),
)

// parseTargetRef splits a route target literal into controller and action.
// Falls back to a plain "#" split for targets the grammar does not cover
// (dashed paths, interpolation remnants). ok is false when the text has no
// controller#action shape at all.
func parseTargetRef(text string) (controller, action string, ok bool) {
	ref, err := targetParser.ParseString("", text)
	if err == nil {
		return strings.Join(ref.Controller, "/"), ref.Action, true
	}
	if idx := strings.Index(text, "#"); idx >= 0 {
		return text[:idx], text[idx+1:], true
	}
	return "", "", false
}
