package rubyast

import "strings"

// CallInfo is the flattened view of a call-shaped node: the method name, its
// argument nodes (punctuation stripped) and the attached block, if any.
type CallInfo struct {
	Name  string
	Args  []*Node
	Block *Node
}

// ExtractCall extracts call information from any call-shaped node. Returns
// nil when the node is not a method call. Handles both parenthesized calls
// and bare command forms across the grammar's call node variants.
func ExtractCall(n *Node) *CallInfo {
	if n == nil || n.Kind() != KindCall {
		return nil
	}

	info := &CallInfo{}

	methodNode := n.ChildByField("method")
	if methodNode != nil {
		info.Name = methodNode.Text()
	}

	if args := n.ChildByField("arguments"); args != nil {
		for _, child := range args.Children() {
			if child.IsNamed() {
				info.Args = append(info.Args, child)
			}
		}
	}
	if block := n.ChildByField("block"); block != nil {
		info.Block = block
	}

	// Positional fallbacks for grammar variants without field bindings.
	children := n.Children()
	if info.Name == "" {
		if len(children) == 0 {
			return nil
		}
		first := children[0]
		if first.Kind() != KindOther && first.RawType() != "identifier" {
			return nil
		}
		info.Name = first.Text()
		if info.Args == nil {
			for _, child := range children[1:] {
				if child.Kind() == KindBlock {
					continue
				}
				if child.RawType() == "argument_list" {
					for _, arg := range child.Children() {
						if arg.IsNamed() {
							info.Args = append(info.Args, arg)
						}
					}
				} else if child.IsNamed() {
					info.Args = append(info.Args, child)
				}
			}
		}
	} else if info.Args == nil {
		for _, child := range children {
			if child.RawType() == "argument_list" {
				for _, arg := range child.Children() {
					if arg.IsNamed() {
						info.Args = append(info.Args, arg)
					}
				}
			}
		}
	}
	if info.Block == nil {
		for _, child := range children {
			if child.Kind() == KindBlock {
				info.Block = child
				break
			}
		}
	}

	if info.Name == "" {
		return nil
	}
	return info
}

// BlockBody returns the statements inside a do...end or { } block
func BlockBody(block *Node) []*Node {
	if block == nil {
		return nil
	}
	for _, child := range block.Children() {
		if child.Kind() == KindBody {
			return child.NamedChildren()
		}
	}
	return nil
}

// SymbolName returns the name of a :symbol node, or "" when not a symbol
func SymbolName(n *Node) string {
	text := n.Text()
	if strings.HasPrefix(text, ":") {
		return text[1:]
	}
	if n != nil && n.Kind() == KindSymbol {
		return text
	}
	return ""
}

// StringValue extracts the literal value from string and symbol nodes.
// For anything else the trimmed source text is returned with surrounding
// quotes or a leading colon stripped.
func StringValue(n *Node) string {
	if n == nil {
		return ""
	}
	switch {
	case n.RawType() == "string":
		for _, child := range n.Children() {
			if child.RawType() == "string_content" {
				return child.Text()
			}
		}
		return ""
	case n.Kind() == KindSymbol:
		return SymbolName(n)
	case n.RawType() == "string_content":
		return n.Text()
	}
	text := strings.TrimSpace(n.Text())
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') {
		return text[1 : len(text)-1]
	}
	if strings.HasPrefix(text, ":") {
		return text[1:]
	}
	return text
}

// ArrayElements extracts string and symbol values from an array node,
// covering both [:a, :b] literals and %i[a b] symbol arrays
func ArrayElements(n *Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	switch n.Kind() {
	case KindArray:
		for _, child := range n.Children() {
			switch child.Kind() {
			case KindSymbol, KindString:
				if val := StringValue(child); val != "" {
					out = append(out, val)
				}
			}
		}
	case KindSymbolArray:
		for _, child := range n.Children() {
			if child.RawType() == "bare_symbol" {
				out = append(out, child.Text())
			}
		}
	}
	return out
}

// HashFromArgs extracts keyword arguments from an argument list, handling
// both trailing `key: value` pairs and explicit hash literals. Splat
// arguments cannot be resolved statically and are ignored.
func HashFromArgs(args []*Node) map[string]*Node {
	result := make(map[string]*Node)
	for _, arg := range args {
		switch arg.Kind() {
		case KindPair:
			addPair(result, arg)
		case KindHash:
			for _, child := range arg.Children() {
				if child.Kind() == KindPair {
					addPair(result, child)
				}
			}
		}
	}
	return result
}

// addPair resolves a pair node's key and value, with a positional fallback
// for grammar versions that do not bind the key/value fields
func addPair(dst map[string]*Node, pair *Node) {
	key := pair.ChildByField("key")
	value := pair.ChildByField("value")
	if key == nil || value == nil {
		var named []*Node
		for _, child := range pair.Children() {
			if child.IsNamed() {
				named = append(named, child)
			}
		}
		if len(named) < 2 {
			return
		}
		key, value = named[0], named[1]
	}
	if name := StringValue(key); name != "" {
		dst[name] = value
	}
}
