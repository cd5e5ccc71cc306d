package site

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Bag is an insertion-ordered mapping of front-matter keys to values.
type Bag struct {
	keys   []string
	values map[string]Value
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{values: map[string]Value{}}
}

// BagFromMap builds a bag from an unordered map. Keys are sorted for stability.
func BagFromMap(m map[string]any) *Bag {
	b := NewBag()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Set(k, ValueOf(m[k]))
	}
	return b
}

// Len returns the number of keys.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns keys in insertion order.
func (b *Bag) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Get returns the value for key.
func (b *Bag) Get(key string) (Value, bool) {
	if b == nil {
		return Null(), false
	}
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (b *Bag) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// GetString returns the string form of key, or "" when absent or not a scalar.
func (b *Bag) GetString(key string) string {
	v, ok := b.Get(key)
	if !ok {
		return ""
	}
	s, err := v.AsString()
	if err != nil {
		return ""
	}
	return s
}

// GetBool returns the bool form of key, or fallback when absent or not coercible.
func (b *Bag) GetBool(key string, fallback bool) bool {
	v, ok := b.Get(key)
	if !ok {
		return fallback
	}
	out, err := v.AsBool()
	if err != nil {
		return fallback
	}
	return out
}

// Set stores value under key, keeping the original position for existing keys.
func (b *Bag) Set(key string, value Value) {
	if b.values == nil {
		b.values = map[string]Value{}
	}
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// SetIfAbsent stores value only when key is missing and reports whether it did.
func (b *Bag) SetIfAbsent(key string, value Value) bool {
	if b.Has(key) {
		return false
	}
	b.Set(key, value)
	return true
}

// Delete removes key.
func (b *Bag) Delete(key string) {
	if _, ok := b.values[key]; !ok {
		return
	}
	delete(b.values, key)
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for each entry in order until fn returns false.
func (b *Bag) Range(fn func(key string, value Value) bool) {
	if b == nil {
		return
	}
	for _, k := range b.keys {
		if !fn(k, b.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (b *Bag) Clone() *Bag {
	out := NewBag()
	b.Range(func(k string, v Value) bool {
		out.Set(k, v.clone())
		return true
	})
	return out
}

// Merge copies every entry of other into b, overwriting existing keys.
func (b *Bag) Merge(other *Bag) {
	other.Range(func(k string, v Value) bool {
		b.Set(k, v.clone())
		return true
	})
}

// Map converts the bag to plain Go data for template engines.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, b.Len())
	b.Range(func(k string, v Value) bool {
		out[k] = v.Interface()
		return true
	})
	return out
}

// Equal reports whether both bags hold the same keys in the same order with equal values.
func (b *Bag) Equal(other *Bag) bool {
	if b.Len() != other.Len() {
		return false
	}
	for i, k := range b.keys {
		if other.keys[i] != k {
			return false
		}
		if !b.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

func (b *Bag) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	b.Range(func(k string, v Value) bool {
		if sb.Len() > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", k, v.String())
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

// UnmarshalYAML decodes a YAML mapping while preserving key order.
func (b *Bag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if b.values == nil {
		b.values = map[string]Value{}
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			if err := b.mergeNode(valNode); err != nil {
				return err
			}
			continue
		}
		v, err := valueFromNode(valNode)
		if err != nil {
			return fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		b.Set(keyNode.Value, v)
	}
	return nil
}

func (b *Bag) mergeNode(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	var sources []*yaml.Node
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	} else {
		sources = []*yaml.Node{node}
	}
	for _, src := range sources {
		merged := NewBag()
		if err := merged.UnmarshalYAML(src); err != nil {
			return err
		}
		merged.Range(func(k string, v Value) bool {
			b.SetIfAbsent(k, v)
			return true
		})
	}
	return nil
}

// MarshalYAML emits the bag as an ordered mapping.
func (b *Bag) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	var err error
	b.Range(func(k string, v Value) bool {
		var valNode yaml.Node
		if err = valNode.Encode(v.Interface()); err != nil {
			return false
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &valNode)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func valueFromNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return valueFromNode(node.Alias)
	case yaml.MappingNode:
		nested := NewBag()
		if err := nested.UnmarshalYAML(node); err != nil {
			return Null(), err
		}
		return Map(nested), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := valueFromNode(child)
			if err != nil {
				return Null(), err
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.ScalarNode:
		return scalarFromNode(node)
	}
	return Null(), fmt.Errorf("line %d: unsupported node %s", node.Line, kindName(node.Kind))
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return Null(), err
		}
		return Bool(v), nil
	case "!!int":
		var v int64
		if err := node.Decode(&v); err != nil {
			return Null(), err
		}
		return Int(v), nil
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return Null(), err
		}
		return Float(v), nil
	case "!!timestamp":
		var v time.Time
		if err := node.Decode(&v); err != nil {
			return String(node.Value), nil
		}
		return Time(v), nil
	default:
		return String(node.Value), nil
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
