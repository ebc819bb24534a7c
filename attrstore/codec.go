/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrstore

import (
	"fmt"

	"github.com/suparena/topobind/attribute"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/storagemodels"
)

// Encode converts an attribute into its persisted form.
func Encode(a attribute.Attribute) (storagemodels.AttributeValue, error) {
	v := storagemodels.AttributeValue{Kind: a.Tag().String()}
	switch a.Tag() {
	case attribute.TagInt:
		i, _ := a.AsInt()
		v.Int = &i
	case attribute.TagDouble:
		d, _ := a.AsDouble()
		v.Double = &d
	case attribute.TagString:
		s, _ := a.AsString()
		v.String = &s
	case attribute.TagList:
		items, _ := a.AsList()
		v.List = make([]storagemodels.AttributeValue, len(items))
		for i, item := range items {
			enc, err := Encode(item)
			if err != nil {
				return storagemodels.AttributeValue{}, fmt.Errorf("list element %d: %w", i, err)
			}
			v.List[i] = enc
		}
	default:
		return storagemodels.AttributeValue{}, errors.NewValidationError("attribute", "attribute has no tag")
	}
	return v, nil
}

// Decode converts a persisted value back into an attribute.
func Decode(v storagemodels.AttributeValue) (attribute.Attribute, error) {
	tag, err := attribute.ParseTag(v.Kind)
	if err != nil {
		return attribute.Attribute{}, errors.NewValidationError("kind", err.Error())
	}
	missing := func() (attribute.Attribute, error) {
		return attribute.Attribute{}, errors.NewValidationError(v.Kind, "value is missing")
	}

	switch tag {
	case attribute.TagInt:
		if v.Int == nil {
			return missing()
		}
		return attribute.NewInt(*v.Int), nil
	case attribute.TagDouble:
		if v.Double == nil {
			return missing()
		}
		return attribute.NewDouble(*v.Double), nil
	case attribute.TagString:
		if v.String == nil {
			return missing()
		}
		return attribute.NewString(*v.String), nil
	default:
		items := make([]attribute.Attribute, len(v.List))
		for i, item := range v.List {
			a, err := Decode(item)
			if err != nil {
				return attribute.Attribute{}, fmt.Errorf("list element %d: %w", i, err)
			}
			items[i] = a
		}
		return attribute.NewList(items...), nil
	}
}

// EncodeAll converts a dictionary of attributes.
func EncodeAll(attrs map[string]attribute.Attribute) (map[string]storagemodels.AttributeValue, error) {
	out := make(map[string]storagemodels.AttributeValue, len(attrs))
	for k, a := range attrs {
		v, err := Encode(a)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// DecodeAll converts a persisted dictionary.
func DecodeAll(values map[string]storagemodels.AttributeValue) (map[string]attribute.Attribute, error) {
	out := make(map[string]attribute.Attribute, len(values))
	for k, v := range values {
		a, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = a
	}
	return out, nil
}
