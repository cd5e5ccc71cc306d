package site

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrCoercion is returned when a Value cannot be converted to the requested type.
var ErrCoercion = errors.New("value coercion failed")

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
	KindTime
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a front-matter value: String | Int | Float | Bool | List | Map | Time | Null.
// The zero Value is Null.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	list []Value
	m    *Bag
	t    time.Time
}

func Null() Value               { return Value{} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Float(f float64) Value     { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value    { return Value{kind: KindTime, t: t} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map wraps a nested bag. A nil bag is stored as an empty one.
func Map(b *Bag) Value {
	if b == nil {
		b = NewBag()
	}
	return Value{kind: KindMap, m: b}
}

// Strings builds a list value from plain strings.
func Strings(items []string) Value {
	out := make([]Value, 0, len(items))
	for _, s := range items {
		out = append(out, String(s))
	}
	return List(out...)
}

// ValueOf converts decoded Go data (as produced by yaml or json decoders) into a Value.
func ValueOf(v any) Value {
	switch vv := v.(type) {
	case nil:
		return Null()
	case Value:
		return vv
	case string:
		return String(vv)
	case bool:
		return Bool(vv)
	case int:
		return Int(int64(vv))
	case int32:
		return Int(int64(vv))
	case int64:
		return Int(vv)
	case uint:
		return Int(int64(vv))
	case uint64:
		return Int(int64(vv))
	case float32:
		return Float(float64(vv))
	case float64:
		return Float(vv)
	case time.Time:
		return Time(vv)
	case []string:
		return Strings(vv)
	case []any:
		items := make([]Value, 0, len(vv))
		for _, item := range vv {
			items = append(items, ValueOf(item))
		}
		return List(items...)
	case map[string]any:
		return Map(BagFromMap(vv))
	case map[any]any:
		converted := make(map[string]any, len(vv))
		for k, item := range vv {
			converted[fmt.Sprint(k)] = item
		}
		return Map(BagFromMap(converted))
	case *Bag:
		return Map(vv)
	default:
		return String(fmt.Sprint(vv))
	}
}

// Kind reports the variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString converts scalars to their textual form. Lists, maps and null fail.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindTime:
		return v.t.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("%w: %s to string", ErrCoercion, v.kind)
	}
}

// AsInt accepts ints, integral floats and numeric strings.
func (v Value) AsInt() (int, error) {
	switch v.kind {
	case KindInt:
		return int(v.i), nil
	case KindFloat:
		if v.f != math.Trunc(v.f) {
			return 0, fmt.Errorf("%w: %v is not integral", ErrCoercion, v.f)
		}
		return int(v.f), nil
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.s))
		if err != nil {
			return 0, fmt.Errorf("%w: %q to int", ErrCoercion, v.s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s to int", ErrCoercion, v.kind)
	}
}

// AsBool accepts bools and the strings "true"/"false" in any case.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("%w: %q to bool", ErrCoercion, v.s)
	default:
		return false, fmt.Errorf("%w: %s to bool", ErrCoercion, v.kind)
	}
}

// AsList returns list items. A scalar string is not split; callers decide.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("%w: %s to list", ErrCoercion, v.kind)
	}
	return v.list, nil
}

// AsMap returns the nested bag.
func (v Value) AsMap() (*Bag, error) {
	if v.kind != KindMap {
		return nil, fmt.Errorf("%w: %s to map", ErrCoercion, v.kind)
	}
	return v.m, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// AsTime accepts timestamps and strings in the common front-matter layouts.
func (v Value) AsTime() (time.Time, error) {
	switch v.kind {
	case KindTime:
		return v.t, nil
	case KindString:
		s := strings.TrimSpace(v.s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q to time", ErrCoercion, v.s)
	default:
		return time.Time{}, fmt.Errorf("%w: %s to time", ErrCoercion, v.kind)
	}
}

// Interface returns plain Go data suitable for template engines.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, item.Interface())
		}
		return out
	case KindMap:
		return v.m.Map()
	default:
		return nil
	}
}

// String renders scalars; other kinds render their Go form.
func (v Value) String() string {
	if s, err := v.AsString(); err == nil {
		return s
	}
	if v.kind == KindNull {
		return ""
	}
	return fmt.Sprint(v.Interface())
}

// Equal compares two values structurally.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindTime:
		return v.t.Equal(other.t)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	}
	return false
}

func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.clone()
		}
		return List(items...)
	case KindMap:
		return Map(v.m.Clone())
	default:
		return v
	}
}
