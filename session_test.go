/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package topobind

import (
	"context"
	stderrors "errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"

	"github.com/suparena/topobind/attrstore"
	"github.com/suparena/topobind/datastore/memory"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/kernel/arena"
	"github.com/suparena/topobind/storagemodels"
	"github.com/suparena/topobind/topology"
)

const roomGUID = "a6f3e1d2-4b5c-4d7e-8f90-1a2b3c4d5e6f"

// Room is a registered Cell subtype.
type Room struct {
	*topology.Cell
}

type SessionSuite struct {
	suite.Suite
	teardown func()
	ctx      context.Context
	k        *arena.Kernel
	ds       *memory.DataStore[storagemodels.DictionaryRecord]
	s        *Session
}

func (st *SessionSuite) SetupTest() {
	st.teardown = gotestingadapter.QuickConfig(st.T(), "topobind")
	st.ctx = context.Background()
	st.k = arena.New()
	st.ds = memory.New[storagemodels.DictionaryRecord](attrstore.RecordKey)

	s, err := New(st.k, st.ds)
	st.Require().NoError(err)
	st.s = s
}

func (st *SessionSuite) TearDownTest() {
	st.teardown()
}

func (st *SessionSuite) box(opts ...arena.Option) topology.Topology {
	shape, err := st.k.Box(v3.Vec{}, v3.Vec{X: 4, Y: 3, Z: 3}, opts...)
	st.Require().NoError(err)
	t, err := st.s.ByCoreTopology(shape)
	st.Require().NoError(err)
	return t
}

func (st *SessionSuite) TestUnregisteredTokenResolvesToCell() {
	t := st.box(arena.WithGUID("0f0e0d0c-0b0a-4908-8706-050403020100"))
	_, ok := t.(*topology.Cell)
	st.True(ok, "got %T", t)
	st.Equal(kernel.KindCell, t.Kind())
}

func (st *SessionSuite) TestSetDictionaryRoundTrip() {
	cell := st.box()

	annotated, err := st.s.SetDictionary(st.ctx, cell, map[string]any{"area": 12.5, "label": "A1"})
	st.Require().NoError(err)
	st.NotEqual(cell.ID(), annotated.ID())
	st.Equal(kernel.KindCell, annotated.Kind())

	dict, err := st.s.Dictionary(st.ctx, annotated)
	st.Require().NoError(err)
	st.Equal(map[string]any{"area": 12.5, "label": "A1"}, dict)

	orig, err := st.s.Dictionary(st.ctx, cell)
	st.Require().NoError(err)
	st.Nil(orig)
}

func (st *SessionSuite) TestSetDictionaryLeavesOriginalUnchanged() {
	cell := st.box()
	first, err := st.s.SetDictionary(st.ctx, cell, map[string]any{"label": "A1"})
	st.Require().NoError(err)

	second, err := st.s.SetDictionary(st.ctx, first, map[string]any{"label": "B2", "n": int64(2)})
	st.Require().NoError(err)

	d1, err := st.s.Dictionary(st.ctx, first)
	st.Require().NoError(err)
	st.Equal(map[string]any{"label": "A1"}, d1)

	d2, err := st.s.Dictionary(st.ctx, second)
	st.Require().NoError(err)
	st.Equal(map[string]any{"label": "B2", "n": int64(2)}, d2)
}

func (st *SessionSuite) TestSetDictionaryUnsupportedValueMakesNoCopy() {
	cell := st.box()
	before := st.k.Len()

	_, err := st.s.SetDictionary(st.ctx, cell, map[string]any{"ok": "x", "bad": 3})
	st.True(errors.IsUnsupportedType(err))
	st.Equal(before, st.k.Len(), "no copy on failure")
	st.Equal(0, st.ds.Count())
}

func (st *SessionSuite) TestSetDictionaryEmptyIsUnannotated() {
	cell := st.box()
	cp, err := st.s.SetDictionary(st.ctx, cell, map[string]any{})
	st.Require().NoError(err)

	dict, err := st.s.Dictionary(st.ctx, cp)
	st.Require().NoError(err)
	st.Nil(dict)
}

func (st *SessionSuite) TestNilTopology() {
	_, err := st.s.SetDictionary(st.ctx, nil, map[string]any{"a": "b"})
	st.True(errors.IsNullEntity(err))

	_, err = st.s.Dictionary(st.ctx, (*topology.Cell)(nil))
	st.True(errors.IsNullEntity(err))

	_, err = Copy[*topology.Cell](st.ctx, st.s, nil)
	st.True(errors.IsNullEntity(err))

	t, err := st.s.ByCoreTopology(nil)
	st.NoError(err)
	st.Nil(t)
}

func (st *SessionSuite) TestCopyPreservesAttributes() {
	cell := st.box()
	annotated, err := st.s.SetDictionary(st.ctx, cell, map[string]any{
		"label": "A1",
		"tags":  []any{"north", int64(2)},
	})
	st.Require().NoError(err)

	c, ok := annotated.(*topology.Cell)
	st.Require().True(ok)
	dup, err := Copy(st.ctx, st.s, c)
	st.Require().NoError(err)
	st.NotEqual(c.ID(), dup.ID())

	dict, err := st.s.Dictionary(st.ctx, dup)
	st.Require().NoError(err)
	st.Equal(map[string]any{"label": "A1", "tags": []any{"north", int64(2)}}, dict)

	// rewriting the copy's dictionary leaves the source alone
	_, err = st.s.SetDictionary(st.ctx, dup, map[string]any{"label": "Z"})
	st.Require().NoError(err)
	src, err := st.s.Dictionary(st.ctx, c)
	st.Require().NoError(err)
	st.Equal("A1", src["label"])
}

func (st *SessionSuite) TestCopyTransfersSubEntityDictionaries() {
	cell := st.box()
	faces, err := cell.(*topology.Cell).Faces()
	st.Require().NoError(err)

	top := faces[0]
	selector, err := st.k.Coordinates(st.mustVertex(top))
	st.Require().NoError(err)

	v := st.k.Vertex(selector.X, selector.Y, selector.Z)
	sel := topology.NewVertex(st.s.Resolver(), v)
	annotated, err := st.s.SetDictionaries(st.ctx, cell, []*topology.Vertex{sel},
		[]map[string]any{{"kind": "corner"}}, kernel.KindVertex)
	st.Require().NoError(err)

	dup, err := Copy[topology.Topology](st.ctx, st.s, annotated)
	st.Require().NoError(err)

	found := 0
	verts, err := dup.SubTopologies(kernel.KindVertex)
	st.Require().NoError(err)
	for _, vt := range verts {
		d, err := st.s.Dictionary(st.ctx, vt)
		st.Require().NoError(err)
		if d != nil {
			found++
			st.Equal(map[string]any{"kind": "corner"}, d)
		}
	}
	st.Equal(1, found)
}

func (st *SessionSuite) mustVertex(t topology.Topology) kernel.Shape {
	verts, err := t.SubTopologies(kernel.KindVertex)
	st.Require().NoError(err)
	st.Require().NotEmpty(verts)
	return verts[0].Shape()
}

func (st *SessionSuite) TestSetDictionariesSelectsNearest() {
	cell := st.box()
	top := topology.NewVertex(st.s.Resolver(), st.k.Vertex(2, 1.5, 3))
	bottom := topology.NewVertex(st.s.Resolver(), st.k.Vertex(2, 1.5, 0))

	annotated, err := st.s.SetDictionaries(st.ctx, cell,
		[]*topology.Vertex{top, bottom},
		[]map[string]any{{"name": "roof"}, {"name": "floor"}},
		kernel.KindFace)
	st.Require().NoError(err)

	// the cell itself carries nothing
	d, err := st.s.Dictionary(st.ctx, annotated)
	st.Require().NoError(err)
	st.Nil(d)

	faces, err := annotated.SubTopologies(kernel.KindFace)
	st.Require().NoError(err)
	names := map[string]float64{}
	for _, f := range faces {
		d, err := st.s.Dictionary(st.ctx, f)
		st.Require().NoError(err)
		if d == nil {
			continue
		}
		g, err := f.Geometry()
		st.Require().NoError(err)
		names[d["name"].(string)] = g.BoundingBox().Min.Z
	}
	st.Equal(map[string]float64{"roof": 3, "floor": 0}, names)

	// the original is untouched
	orig, err := cell.SubTopologies(kernel.KindFace)
	st.Require().NoError(err)
	for _, f := range orig {
		d, err := st.s.Dictionary(st.ctx, f)
		st.Require().NoError(err)
		st.Nil(d)
	}
}

func (st *SessionSuite) TestSetDictionariesLengthMismatch() {
	cell := st.box()
	sel := topology.NewVertex(st.s.Resolver(), st.k.Vertex(0, 0, 0))
	_, err := st.s.SetDictionaries(st.ctx, cell, []*topology.Vertex{sel}, nil, kernel.KindFace)
	st.True(errors.IsValidationError(err))
}

func (st *SessionSuite) TestRegisteredSubtypeSurvivesCopy() {
	st.Require().NoError(st.s.RegisterFactory(roomGUID, topology.FactoryFunc(
		func(r *topology.Resolver, s kernel.Shape) (topology.Topology, error) {
			return &Room{Cell: topology.NewCell(r, s)}, nil
		})))

	t := st.box(arena.WithGUID(roomGUID))
	room, ok := t.(*Room)
	st.Require().True(ok, "got %T", t)

	annotated, err := st.s.SetDictionary(st.ctx, room, map[string]any{"label": "kitchen"})
	st.Require().NoError(err)
	_, ok = annotated.(*Room)
	st.True(ok, "copies keep their identity token")

	dup, err := Copy(st.ctx, st.s, annotated.(*Room))
	st.Require().NoError(err)
	st.Equal(roomGUID, dup.InstanceGUID())

	err = st.s.RegisterFactory(roomGUID, topology.FactoryFunc(
		func(r *topology.Resolver, s kernel.Shape) (topology.Topology, error) { return nil, nil }))
	st.True(errors.IsAlreadyExists(err))
}

func (st *SessionSuite) TestCopyTypeMismatch() {
	st.Require().NoError(st.s.RegisterFactory(roomGUID, topology.FactoryFunc(
		func(r *topology.Resolver, s kernel.Shape) (topology.Topology, error) {
			return &Room{Cell: topology.NewCell(r, s)}, nil
		})))
	shape, err := st.k.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}, arena.WithGUID(roomGUID))
	st.Require().NoError(err)

	// a plain wrapper around a Room entity copies to a *Room
	plain := topology.NewCell(st.s.Resolver(), shape)
	_, err = Copy(st.ctx, st.s, plain)
	st.True(errors.IsValidationError(err))
}

func (st *SessionSuite) TestStoreFailureIsKernelError() {
	cell := st.box()
	boom := stderrors.New("ProvisionedThroughputExceededException")
	st.ds.WithPutError(boom)

	_, err := st.s.SetDictionary(st.ctx, cell, map[string]any{"a": "b"})
	st.True(errors.IsKernelFailure(err))
	st.ErrorIs(err, boom)
	st.Contains(err.Error(), "ProvisionedThroughputExceededException")
}

func (st *SessionSuite) TestForeignEntityIsKernelError() {
	other := arena.New()
	shape, err := other.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	st.Require().NoError(err)
	t, err := st.s.ByCoreTopology(shape)
	st.Require().NoError(err)

	_, err = st.s.SetDictionary(st.ctx, t, map[string]any{"a": "b"})
	st.True(errors.IsKernelFailure(err))
	st.True(errors.IsNotFound(err), "native error is kept")
}

func (st *SessionSuite) TestByID() {
	cell := st.box()
	t, err := st.s.ByID(cell.ID())
	st.Require().NoError(err)
	st.Equal(cell.ID(), t.ID())

	_, err = st.s.ByID(kernel.NewShapeID())
	st.True(errors.IsKernelFailure(err))
}

func (st *SessionSuite) TestSetDictionariesAnnotatesTheTopologyItself() {
	cell := st.box()
	sel := topology.NewVertex(st.s.Resolver(), st.k.Vertex(2, 1.5, 1.5))

	annotated, err := st.s.SetDictionaries(st.ctx, cell, []*topology.Vertex{sel},
		[]map[string]any{{"name": "room"}}, kernel.KindCell)
	st.Require().NoError(err)

	d, err := st.s.Dictionary(st.ctx, annotated)
	st.Require().NoError(err)
	st.Equal(map[string]any{"name": "room"}, d)
	st.Equal(1, st.ds.Count())
}

func (st *SessionSuite) TestSetDictionariesResolvesBeforeWriting() {
	cell := st.box()
	good := topology.NewVertex(st.s.Resolver(), st.k.Vertex(2, 1.5, 3))
	edges, err := cell.SubTopologies(kernel.KindEdge)
	st.Require().NoError(err)
	// a vertex wrapper around an edge has no coordinates
	bad := topology.NewVertex(st.s.Resolver(), edges[0].Shape())

	_, err = st.s.SetDictionaries(st.ctx, cell, []*topology.Vertex{good, bad},
		[]map[string]any{{"name": "roof"}, {"name": "edge"}}, kernel.KindFace)
	st.Error(err)
	st.Equal(0, st.ds.Count(), "no dictionary written")
}

// putLimit fails every Put after the first n.
type putLimit struct {
	*memory.DataStore[storagemodels.DictionaryRecord]
	n int
}

func (p *putLimit) Put(ctx context.Context, r storagemodels.DictionaryRecord) error {
	if p.n == 0 {
		return stderrors.New("write capacity exceeded")
	}
	p.n--
	return p.DataStore.Put(ctx, r)
}

func (st *SessionSuite) TestSetDictionariesRemovesPartialWrites() {
	ds := &putLimit{DataStore: memory.New[storagemodels.DictionaryRecord](attrstore.RecordKey), n: 1}
	s, err := New(st.k, ds)
	st.Require().NoError(err)

	shape, err := st.k.Box(v3.Vec{}, v3.Vec{X: 4, Y: 3, Z: 3})
	st.Require().NoError(err)
	cell, err := s.ByCoreTopology(shape)
	st.Require().NoError(err)

	top := topology.NewVertex(s.Resolver(), st.k.Vertex(2, 1.5, 3))
	bottom := topology.NewVertex(s.Resolver(), st.k.Vertex(2, 1.5, 0))
	_, err = s.SetDictionaries(st.ctx, cell, []*topology.Vertex{top, bottom},
		[]map[string]any{{"name": "roof"}, {"name": "floor"}}, kernel.KindFace)
	st.True(errors.IsKernelFailure(err))
	st.Equal(0, ds.Count(), "first dictionary removed again")
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func TestNewRequiresKernel(t *testing.T) {
	_, err := New(nil, nil)
	if !errors.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	k := arena.New()
	s1, err := New(k, nil)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := New(k, nil)
	if err != nil {
		t.Fatal(err)
	}

	f := topology.FactoryFunc(func(r *topology.Resolver, s kernel.Shape) (topology.Topology, error) {
		return &Room{Cell: topology.NewCell(r, s)}, nil
	})
	if err := s1.RegisterFactory(roomGUID, f); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Resolver().Find(roomGUID); !errors.IsNotFound(err) {
		t.Fatalf("registration leaked across sessions: %v", err)
	}
}
