/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package host

import (
	"context"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/suparena/topobind"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/kernel/arena"
	"github.com/suparena/topobind/topology"
)

// bindings holds what the builtins of one evaluation operate on.
type bindings struct {
	ctx     context.Context
	session *topobind.Session
	arena   *arena.Kernel
}

type builtin func(env *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error)

func (b *bindings) register(env *zygo.Zlisp) {
	fns := map[string]builtin{
		"vertex":           b.vertex,
		"edge":             b.edge,
		"wire":             b.compound(b.arena.Wire),
		"face":             b.compound(b.arena.Face),
		"shell":            b.compound(b.arena.Shell),
		"cell":             b.compound(b.arena.Cell),
		"cell_complex":     b.compound(b.arena.CellComplex),
		"cluster":          b.compound(b.arena.Cluster),
		"aperture":         b.aperture,
		"box":              b.box,
		"kind":             b.kind,
		"dict":             b.dict,
		"dict_get":         b.dictGet,
		"dict_keys":        b.dictKeys,
		"set_dictionary":   b.setDictionary,
		"set_dictionaries": b.setDictionaries,
		"dictionary":       b.dictionary,
		"copy":             b.copy,
		"sub_topologies":   b.subTopologies,
	}
	for name, fn := range fns {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(env, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		})
	}
}

func arity(args []zygo.Sexp, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

// wrap resolves a kernel entity through the session's factory dispatch.
func (b *bindings) wrap(shape kernel.Shape, err error) (zygo.Sexp, error) {
	if err != nil {
		return zygo.SexpNull, err
	}
	t, err := b.session.ByCoreTopology(shape)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpTopology{t: t}, nil
}

// (vertex x y z)
func (b *bindings) vertex(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	p, err := b.point(args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.wrap(b.arena.Vertex(p.X, p.Y, p.Z), nil)
}

func (b *bindings) point(args []zygo.Sexp) (v3.Vec, error) {
	if err := arity(args, 3); err != nil {
		return v3.Vec{}, err
	}
	var c [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return v3.Vec{}, err
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// (edge v1 v2)
func (b *bindings) edge(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 2); err != nil {
		return zygo.SexpNull, err
	}
	start, err := toVertex(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	end, err := toVertex(args[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.wrap(b.arena.Edge(start.Shape(), end.Shape()))
}

// (face [w1 w2]) or (face w1 w2)
func (b *bindings) compound(build func([]kernel.Shape, ...arena.Option) (kernel.Shape, error)) builtin {
	return func(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
		members, err := membersOf(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b.wrap(build(members))
	}
}

// (aperture t)
func (b *bindings) aperture(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 1); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.wrap(b.arena.Aperture(t.Shape()))
}

// (box dx dy dz) spans from the origin, (box x0 y0 z0 x1 y1 z1) between two
// corners.
func (b *bindings) box(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	var lo, hi v3.Vec
	var err error
	switch len(args) {
	case 3:
		hi, err = b.point(args)
	case 6:
		if lo, err = b.point(args[:3]); err == nil {
			hi, err = b.point(args[3:])
		}
	default:
		err = fmt.Errorf("expected 3 or 6 arguments, got %d", len(args))
	}
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.wrap(b.arena.Box(lo, hi))
}

// (kind t)
func (b *bindings) kind(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 1); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	return &zygo.SexpStr{S: t.Kind().String()}, nil
}

// (dict ["k1" "k2"] [v1 v2])
func (b *bindings) dict(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 2); err != nil {
		return zygo.SexpNull, err
	}
	ks, err := sexpListToSlice(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("keys: %w", err)
	}
	vs, err := sexpListToSlice(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("values: %w", err)
	}
	keys := make([]string, len(ks))
	for i, k := range ks {
		if keys[i], err = toString(k); err != nil {
			return zygo.SexpNull, fmt.Errorf("key %d: %w", i, err)
		}
	}
	values := make([]any, len(vs))
	for i, v := range vs {
		if values[i], err = toValue(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("value %d: %w", i, err)
		}
	}
	attrs, err := b.session.Attributes().ByKeysValues(keys, values)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpDict{attrs: attrs}, nil
}

// (dict_get d "key") yields nil for a missing key.
func (b *bindings) dictGet(env *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 2); err != nil {
		return zygo.SexpNull, err
	}
	d, err := toDict(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	key, err := toString(args[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	a, ok := d.attrs[key]
	if !ok {
		return zygo.SexpNull, nil
	}
	v, err := b.session.Attributes().Unwrap(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	return fromValue(env, v)
}

// (dict_keys d) yields the keys in sorted order.
func (b *bindings) dictKeys(env *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 1); err != nil {
		return zygo.SexpNull, err
	}
	d, err := toDict(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	keys := d.keys()
	items := make([]zygo.Sexp, len(keys))
	for i, k := range keys {
		items[i] = &zygo.SexpStr{S: k}
	}
	return env.NewSexpArray(items), nil
}

func (b *bindings) plain(d *sexpDict) (map[string]any, error) {
	return b.session.Attributes().UnwrapAll(d.attrs)
}

// (set_dictionary t d)
func (b *bindings) setDictionary(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 2); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	d, err := toDict(args[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	m, err := b.plain(d)
	if err != nil {
		return zygo.SexpNull, err
	}
	out, err := b.session.SetDictionary(b.ctx, t, m)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpTopology{t: out}, nil
}

// (set_dictionaries t [vertices] [dicts]) or with a kind filter such as
// "Face" or "Face|Cell" as fourth argument.
func (b *bindings) setDictionaries(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 && len(args) != 4 {
		return zygo.SexpNull, fmt.Errorf("expected 3 or 4 arguments, got %d", len(args))
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	sels, err := sexpListToSlice(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("selectors: %w", err)
	}
	ds, err := sexpListToSlice(args[2])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dictionaries: %w", err)
	}
	var filter kernel.Kind
	if len(args) == 4 {
		if filter, err = toMask(args[3]); err != nil {
			return zygo.SexpNull, err
		}
	}

	selectors := make([]*topology.Vertex, len(sels))
	for i, s := range sels {
		if selectors[i], err = toVertex(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("selector %d: %w", i, err)
		}
	}
	dicts := make([]map[string]any, len(ds))
	for i, s := range ds {
		d, err := toDict(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dictionary %d: %w", i, err)
		}
		if dicts[i], err = b.plain(d); err != nil {
			return zygo.SexpNull, err
		}
	}

	out, err := b.session.SetDictionaries(b.ctx, t, selectors, dicts, filter)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpTopology{t: out}, nil
}

// (dictionary t) yields nil when t was never annotated.
func (b *bindings) dictionary(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 1); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	m, err := b.session.Dictionary(b.ctx, t)
	if err != nil {
		return zygo.SexpNull, err
	}
	if m == nil {
		return zygo.SexpNull, nil
	}
	attrs, err := b.session.Attributes().WrapAll(m)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpDict{attrs: attrs}, nil
}

// (copy t)
func (b *bindings) copy(_ *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 1); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	out, err := topobind.Copy(b.ctx, b.session, t)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpTopology{t: out}, nil
}

// (sub_topologies t "Face")
func (b *bindings) subTopologies(env *zygo.Zlisp, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := arity(args, 2); err != nil {
		return zygo.SexpNull, err
	}
	t, err := toTopology(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	mask, err := toMask(args[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	subs, err := t.SubTopologies(mask)
	if err != nil {
		return zygo.SexpNull, err
	}
	items := make([]zygo.Sexp, len(subs))
	for i, s := range subs {
		items[i] = &sexpTopology{t: s}
	}
	return env.NewSexpArray(items), nil
}

// toGo converts the final value of a script.
func (b *bindings) toGo(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *sexpTopology:
		return v.t, nil
	case *sexpDict:
		return b.plain(v)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	case *zygo.SexpArray, *zygo.SexpPair:
		items, err := sexpListToSlice(s)
		if err != nil {
			return nil, err
		}
		list := make([]any, len(items))
		for i, it := range items {
			if list[i], err = b.toGo(it); err != nil {
				return nil, err
			}
		}
		return list, nil
	}
	return toValue(s)
}
