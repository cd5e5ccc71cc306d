package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/kiln/internal/site"
)

// SerializeYAML encodes a bag into YAML bytes (without delimiters), keeping the
// bag's key order. Newlines follow style (defaults to \n). An empty bag yields
// an empty slice.
func SerializeYAML(bag *site.Bag, style Style) ([]byte, error) {
	if bag.Len() == 0 {
		return []byte{}, nil
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(nodeFromBag(bag)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	out := buf.Bytes()
	if nl != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(nl))
	}
	return out, nil
}

// Render produces a full document: delimited header followed by body.
func Render(bag *site.Bag, body []byte) ([]byte, error) {
	header, err := SerializeYAML(bag, Style{Newline: "\n"})
	if err != nil {
		return nil, err
	}
	return Join(header, body, true, Style{Newline: "\n"}), nil
}

func nodeFromBag(bag *site.Bag) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	bag.Range(func(k string, v site.Value) bool {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			nodeFromValue(v))
		return true
	})
	return n
}

func nodeFromValue(v site.Value) *yaml.Node {
	switch v.Kind() {
	case site.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case site.KindInt:
		n, _ := v.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
	case site.KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%v", v.Interface())}
	case site.KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case site.KindTime:
		t, _ := v.AsTime()
		layout := time.RFC3339
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Location() == time.UTC {
			layout = "2006-01-02"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: t.Format(layout)}
	case site.KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		items, _ := v.AsList()
		for _, item := range items {
			seq.Content = append(seq.Content, nodeFromValue(item))
		}
		return seq
	case site.KindMap:
		m, _ := v.AsMap()
		return nodeFromBag(m)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
