/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"fmt"
	"strings"
)

// Tag identifies the variant of an Attribute.
type Tag int

const (
	TagInt Tag = iota + 1
	TagDouble
	TagString
	TagList
)

func (t Tag) String() string {
	switch t {
	case TagInt:
		return "Int"
	case TagDouble:
		return "Double"
	case TagString:
		return "String"
	case TagList:
		return "List"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ParseTag is the inverse of Tag.String.
func ParseTag(s string) (Tag, error) {
	for _, t := range []Tag{TagInt, TagDouble, TagString, TagList} {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown attribute tag %q", s)
}

// Attribute is a typed value attached to a kernel entity. The zero value
// carries no tag and is invalid.
type Attribute struct {
	tag  Tag
	i    int64
	d    float64
	s    string
	list []Attribute
}

func NewInt(v int64) Attribute     { return Attribute{tag: TagInt, i: v} }
func NewDouble(v float64) Attribute { return Attribute{tag: TagDouble, d: v} }
func NewString(v string) Attribute  { return Attribute{tag: TagString, s: v} }

// NewList builds a list attribute. The elements are copied.
func NewList(items ...Attribute) Attribute {
	list := make([]Attribute, len(items))
	copy(list, items)
	return Attribute{tag: TagList, list: list}
}

func (a Attribute) Tag() Tag { return a.tag }

// Valid reports whether a carries one of the four tags.
func (a Attribute) Valid() bool {
	return a.tag >= TagInt && a.tag <= TagList
}

func (a Attribute) AsInt() (int64, bool)      { return a.i, a.tag == TagInt }
func (a Attribute) AsDouble() (float64, bool) { return a.d, a.tag == TagDouble }
func (a Attribute) AsString() (string, bool)  { return a.s, a.tag == TagString }

// AsList returns a copy of the elements of a list attribute.
func (a Attribute) AsList() ([]Attribute, bool) {
	if a.tag != TagList {
		return nil, false
	}
	list := make([]Attribute, len(a.list))
	copy(list, a.list)
	return list, true
}

func (a Attribute) String() string {
	switch a.tag {
	case TagInt:
		return fmt.Sprintf("%d", a.i)
	case TagDouble:
		return fmt.Sprintf("%g", a.d)
	case TagString:
		return fmt.Sprintf("%q", a.s)
	case TagList:
		parts := make([]string, len(a.list))
		for i, item := range a.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}

// Equal compares two attributes structurally.
func (a Attribute) Equal(b Attribute) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagInt:
		return a.i == b.i
	case TagDouble:
		return a.d == b.d
	case TagString:
		return a.s == b.s
	case TagList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !a.list[i].Equal(b.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
