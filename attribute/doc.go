/*
Package attribute converts between Go values and typed kernel attributes.

An Attribute is a closed union of four variants: Int (int64), Double
(float64), String and List (a sequence of attributes). A Manager holds one
Factory per variant in a registry keyed by Tag. Wrapping classifies a value
by its exact Go type:

	int64   -> Int
	float64 -> Double
	string  -> String
	[]any   -> List, elements wrapped recursively

Any other type, including int, bool and nil, fails with an
UnsupportedTypeError. A failed wrap never yields a partial attribute.

Usage:

	m := attribute.NewManager()
	attrs, err := m.WrapAll(map[string]any{"label": "A1", "area": 12.5})
	if err != nil {
	    return err // no attribute was produced
	}
	values, _ := m.UnwrapAll(attrs)
*/
package attribute
