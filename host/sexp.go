/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package host

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/suparena/topobind/attribute"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/topology"
)

// sexpTopology carries a wrapper between builtins.
type sexpTopology struct {
	t topology.Topology
}

func (s *sexpTopology) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", s.t.Kind(), s.t.ID())
}
func (s *sexpTopology) Type() *zygo.RegisteredType { return nil }

// sexpDict carries a dictionary between builtins.
type sexpDict struct {
	attrs map[string]attribute.Attribute
}

func (d *sexpDict) SexpString(ps *zygo.PrintState) string {
	keys := d.keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q %s", k, d.attrs[k]))
	}
	return "(dict " + strings.Join(parts, " ") + ")"
}
func (d *sexpDict) Type() *zygo.RegisteredType { return nil }

func (d *sexpDict) keys() []string {
	keys := make([]string, 0, len(d.attrs))
	for k := range d.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toTopology(s zygo.Sexp) (topology.Topology, error) {
	if t, ok := s.(*sexpTopology); ok {
		return t.t, nil
	}
	return nil, fmt.Errorf("expected topology, got %T (%s)", s, s.SexpString(nil))
}

func toVertex(s zygo.Sexp) (*topology.Vertex, error) {
	t, err := toTopology(s)
	if err != nil {
		return nil, err
	}
	v, ok := t.(*topology.Vertex)
	if !ok {
		return nil, fmt.Errorf("expected vertex, got %s", t.Kind())
	}
	return v, nil
}

func toDict(s zygo.Sexp) (*sexpDict, error) {
	if d, ok := s.(*sexpDict); ok {
		return d, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %T (%s)", s, s.SexpString(nil))
}

// toMask parses "Face" or "Face|Cell".
func toMask(s zygo.Sexp) (kernel.Kind, error) {
	name, err := toString(s)
	if err != nil {
		return 0, err
	}
	var mask kernel.Kind
	for _, part := range strings.Split(name, "|") {
		k, err := kernel.ParseKind(strings.TrimSpace(part))
		if err != nil {
			return 0, err
		}
		mask |= k
	}
	return mask, nil
}

func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// membersOf accepts either one list of topologies or the topologies as
// separate arguments.
func membersOf(args []zygo.Sexp) ([]kernel.Shape, error) {
	items := args
	if len(args) == 1 {
		if _, ok := args[0].(*sexpTopology); !ok {
			list, err := sexpListToSlice(args[0])
			if err != nil {
				return nil, err
			}
			items = list
		}
	}
	shapes := make([]kernel.Shape, 0, len(items))
	for i, it := range items {
		t, err := toTopology(it)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		shapes = append(shapes, t.Shape())
	}
	return shapes, nil
}

// toValue converts a script value to an attribute candidate. Anything the
// attribute manager cannot wrap is passed through and rejected there.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		return v.S, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpArray, *zygo.SexpPair:
		items, err := sexpListToSlice(s)
		if err != nil {
			return nil, err
		}
		list := make([]any, len(items))
		for i, it := range items {
			if list[i], err = toValue(it); err != nil {
				return nil, err
			}
		}
		return list, nil
	}
	return nil, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// fromValue converts an unwrapped attribute value back to a script value.
func fromValue(env *zygo.Zlisp, v any) (zygo.Sexp, error) {
	switch x := v.(type) {
	case int64:
		return &zygo.SexpInt{Val: x}, nil
	case float64:
		return &zygo.SexpFloat{Val: x}, nil
	case string:
		return &zygo.SexpStr{S: x}, nil
	case []any:
		items := make([]zygo.Sexp, len(x))
		for i, it := range x {
			s, err := fromValue(env, it)
			if err != nil {
				return zygo.SexpNull, err
			}
			items[i] = s
		}
		return env.NewSexpArray(items), nil
	}
	return zygo.SexpNull, fmt.Errorf("unsupported value %T", v)
}
