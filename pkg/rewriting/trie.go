package rewriting

// trieNode is one node of the rule index. The path from the root to a
// node spells a term; a node holding a payload marks that term as the
// source of the identified rule. Payload-absent interior nodes are
// retained so re-insertion along the same path stays cheap.
type trieNode struct {
	children map[Symbol]*trieNode
	id       RuleID
	hasID    bool
}

func (n *trieNode) child(s Symbol) *trieNode {
	if n.children == nil {
		return nil
	}
	return n.children[s]
}

func (n *trieNode) ensureChild(s Symbol) *trieNode {
	if n.children == nil {
		n.children = make(map[Symbol]*trieNode)
	}
	c := n.children[s]
	if c == nil {
		c = &trieNode{}
		n.children[s] = c
	}
	return c
}

// Trie maps terms to rule identifiers by prefix. Whole terms are never
// stored at leaves; a payload's term is the path that reaches it.
type Trie struct {
	root trieNode
}

// NewTrie returns an empty index.
func NewTrie() *Trie { return &Trie{} }

func (t *Trie) walk(u Term) *trieNode {
	n := &t.root
	for i := 0; i < u.Len(); i++ {
		if n = n.child(u.At(i)); n == nil {
			return nil
		}
	}
	return n
}

// Get returns the payload stored at exactly u.
func (t *Trie) Get(u Term) (RuleID, bool) {
	n := t.walk(u)
	if n == nil || !n.hasID {
		return 0, false
	}
	return n.id, true
}

// Set stores id at u, creating intermediate nodes as needed. An existing
// payload at u is overwritten.
func (t *Trie) Set(u Term, id RuleID) {
	n := &t.root
	for i := 0; i < u.Len(); i++ {
		n = n.ensureChild(u.At(i))
	}
	n.id = id
	n.hasID = true
}

// Clear removes the payload at u, if any. Nodes are left in place.
func (t *Trie) Clear(u Term) bool {
	n := t.walk(u)
	if n == nil || !n.hasID {
		return false
	}
	n.hasID = false
	n.id = 0
	return true
}

// LongestPrefix walks the trie as far as u's symbols match children and
// returns the deepest node reached together with the number of symbols
// consumed.
func (t *Trie) LongestPrefix(u Term) (*SubtrieView, int) {
	n := &t.root
	consumed := 0
	for consumed < u.Len() {
		c := n.child(u.At(consumed))
		if c == nil {
			break
		}
		n = c
		consumed++
	}
	return &SubtrieView{node: n}, consumed
}

// longestRuleMatch walks u from its first symbol and returns the payload
// of the deepest payload-bearing node on the path, with the number of
// symbols consumed to reach it. This is the reduction query: the payload
// is a rule whose source is the longest rule source prefixing u.
func (t *Trie) longestRuleMatch(u Term) (id RuleID, consumed int, ok bool) {
	n := &t.root
	for i := 0; i < u.Len(); i++ {
		if n = n.child(u.At(i)); n == nil {
			break
		}
		if n.hasID {
			id, consumed, ok = n.id, i+1, true
		}
	}
	return id, consumed, ok
}

// Subtree returns a borrowed view rooted at the node reached by prefix,
// or false if no such path exists. The view shares the trie's nodes and
// must not outlive mutation of the trie.
func (t *Trie) Subtree(prefix Term) (*SubtrieView, bool) {
	n := t.walk(prefix)
	if n == nil {
		return nil, false
	}
	return &SubtrieView{node: n}, true
}

// SubtrieView is a read-only view of a trie subtree.
type SubtrieView struct {
	node *trieNode
}

// Payload returns the payload at the view's root.
func (v *SubtrieView) Payload() (RuleID, bool) {
	if v.node == nil || !v.node.hasID {
		return 0, false
	}
	return v.node.id, true
}

// Elements invokes fn for every payload in the subtree, including one at
// the view's root, passing the path suffix from the view's root to the
// payload. Enumeration stops early if fn returns false.
func (v *SubtrieView) Elements(fn func(suffix []Symbol, id RuleID) bool) {
	if v.node == nil {
		return
	}
	var path []Symbol
	var rec func(n *trieNode) bool
	rec = func(n *trieNode) bool {
		if n.hasID {
			suffix := make([]Symbol, len(path))
			copy(suffix, path)
			if !fn(suffix, n.id) {
				return false
			}
		}
		for s, c := range n.children {
			path = append(path, s)
			more := rec(c)
			path = path[:len(path)-1]
			if !more {
				return false
			}
		}
		return true
	}
	rec(v.node)
}

// descendants invokes fn for every payload strictly below the view's
// root, skipping the root's own payload.
func (v *SubtrieView) descendants(fn func(id RuleID)) {
	if v.node == nil {
		return
	}
	for _, c := range v.node.children {
		sub := SubtrieView{node: c}
		sub.Elements(func(_ []Symbol, id RuleID) bool {
			fn(id)
			return true
		})
	}
}
