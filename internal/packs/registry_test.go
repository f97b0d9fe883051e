package packs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SP-DOCS/internal/models"
)

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry("/opt/templates")

	pack, path, err := r.Resolve("purchase-set")
	require.NoError(t, err)
	assert.Equal(t, "purchase-set", pack.ID)
	assert.Equal(t, models.CaseTypePurchase, pack.CaseType)
	assert.Equal(t, "PURCHASE", pack.DocumentType)
	assert.Equal(t, filepath.Join("/opt/templates", "purchase-set.xlsx"), path)
	assert.NotEmpty(t, pack.InputCells)
	assert.Equal(t, []string{"Memo", "Approval"}, pack.OutputSheets)
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry("/opt/templates")

	_, _, err := r.Resolve("no-such-pack")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPack)
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry("/opt/templates")

	packs := r.List()
	require.Len(t, packs, 4)
	// Registration order is stable.
	assert.Equal(t, "purchase-set", packs[0].ID)

	for _, p := range packs {
		assert.NotEmpty(t, p.TemplateFile, "pack %s", p.ID)
		assert.NotEmpty(t, p.OutputSheets, "pack %s", p.ID)
		// The running-number type prefix always follows the case type.
		assert.Equal(t, p.CaseType.DocumentType(), p.DocumentType, "pack %s", p.ID)
		if p.PDFMode == PDFModeSinglePDF {
			continue
		}
		assert.Equal(t, PDFModePerSheet, p.PDFMode, "pack %s", p.ID)
	}
}
