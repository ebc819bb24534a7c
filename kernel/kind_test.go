/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kernel

import (
	"testing"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "Cell", KindCell.String())
	assert.Equal(t, "CellComplex", KindCellComplex.String())
	assert.Equal(t, "Face|Cell", (KindFace | KindCell).String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
	assert.Equal(t, "Kind(1024)", Kind(1024).String())
}

func TestKindsOrderAndValidity(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 9)
	assert.Equal(t, KindVertex, kinds[0])
	assert.Equal(t, KindAperture, kinds[8])

	for i, k := range kinds {
		assert.True(t, k.Valid(), k.String())
		assert.True(t, k.Has(KindAll))
		if i > 0 {
			assert.Greater(t, int(k), int(kinds[i-1]))
		}
	}
	assert.False(t, (KindFace | KindCell).Valid())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("cellcomplex")
	require.NoError(t, err)
	assert.Equal(t, KindCellComplex, k)

	_, err = ParseKind("solid")
	assert.Error(t, err)
}

func TestCanonicalGUIDs(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		guid := GUID(k)
		assert.True(t, strfmt.IsUUID(guid), "%s token %q is not a UUID", k, guid)
		if other, dup := seen[guid]; dup {
			t.Errorf("%s and %s share token %s", k, other, guid)
		}
		seen[guid] = k
	}
	assert.Empty(t, GUID(KindAll))
}
