package rubyast

import (
	"context"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// Kind is the closed set of structural node kinds the resolvers dispatch on.
// The tree-sitter grammar's node-type vocabulary is translated into this set
// exactly once, here at the provider boundary.
type Kind int

const (
	KindOther Kind = iota
	KindCall
	KindPair
	KindHash
	KindArray
	KindSymbolArray
	KindClass
	KindMethod
	KindConditional
	KindBlock
	KindBody
	KindSymbol
	KindString
	KindConstant
)

// classify maps a tree-sitter-ruby node type onto the internal kind set
func classify(nodeType string) Kind {
	switch nodeType {
	case "call", "command", "command_call", "method_call":
		return KindCall
	case "pair":
		return KindPair
	case "hash":
		return KindHash
	case "array":
		return KindArray
	case "symbol_array":
		return KindSymbolArray
	case "class":
		return KindClass
	case "method":
		return KindMethod
	case "if", "unless", "if_modifier", "unless_modifier", "elsif":
		return KindConditional
	case "do_block", "block":
		return KindBlock
	case "program", "body_statement", "block_body", "then", "else":
		return KindBody
	case "simple_symbol", "bare_symbol", "hash_key_symbol":
		return KindSymbol
	case "string", "string_content":
		return KindString
	case "constant", "scope_resolution":
		return KindConstant
	default:
		return KindOther
	}
}

// Node wraps one concrete syntax tree node together with the source bytes it
// was parsed from. All methods are safe to call on a nil receiver so
// extraction code can chain lookups without guarding every step.
type Node struct {
	inner *sitter.Node
	src   []byte
}

// Kind returns the internal structural kind of the node
func (n *Node) Kind() Kind {
	if n == nil {
		return KindOther
	}
	return classify(n.inner.Type())
}

// RawType returns the grammar-level node type, used only where the closed
// kind set is too coarse (string vs string_content, if vs unless)
func (n *Node) RawType() string {
	if n == nil {
		return ""
	}
	return n.inner.Type()
}

// Text returns the verbatim source text of the node
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.inner.Content(n.src)
}

// Line returns the 1-based source line the node starts on
func (n *Node) Line() int {
	if n == nil {
		return 0
	}
	return int(n.inner.StartPoint().Row) + 1
}

// Children returns all children, punctuation tokens included
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	count := int(n.inner.ChildCount())
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &Node{inner: n.inner.Child(i), src: n.src})
	}
	return out
}

// NamedChildren returns children excluding punctuation and keyword tokens
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	count := int(n.inner.NamedChildCount())
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &Node{inner: n.inner.NamedChild(i), src: n.src})
	}
	return out
}

// ChildByField returns the child bound to a grammar field name, or nil
func (n *Node) ChildByField(name string) *Node {
	if n == nil {
		return nil
	}
	child := n.inner.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return &Node{inner: child, src: n.src}
}

// IsNamed reports whether the node is a named grammar node rather than a
// punctuation or keyword token
func (n *Node) IsNamed() bool {
	return n != nil && n.inner.IsNamed()
}

// parseCacheSize bounds the per-provider file cache. Route trees reference
// each controller file once per controller name, so this comfortably covers
// one repository scan.
const parseCacheSize = 256

// Provider parses Ruby sources into concrete syntax trees. Each file is read
// and parsed at most once per provider; results are cached by absolute path.
type Provider struct {
	parser *sitter.Parser
	cache  *lru.Cache[string, *Node]
}

// NewProvider returns a provider backed by the tree-sitter Ruby grammar
func NewProvider() *Provider {
	parser := sitter.NewParser()
	parser.SetLanguage(ruby.GetLanguage())
	cache, _ := lru.New[string, *Node](parseCacheSize)
	return &Provider{parser: parser, cache: cache}
}

// Parse parses raw source bytes and returns the root node
func (p *Provider) Parse(source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ruby source: %w", err)
	}
	return &Node{inner: tree.RootNode(), src: source}, nil
}

// ParseFile reads and parses a file, consulting the cache first
func (p *Provider) ParseFile(path string) (*Node, error) {
	if root, ok := p.cache.Get(path); ok {
		return root, nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	root, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	p.cache.Add(path, root)
	return root, nil
}
