// Package packs holds the declarative template pack registry: which
// spreadsheet cells of a template receive which inputs, which sheets
// become PDF pages, and how. Pack definitions are static content shipped
// with the binary; only the per-organization activation flag lives in
// the database.
package packs

import (
	"errors"
	"fmt"
	"path/filepath"

	"SP-DOCS/internal/models"
)

// ErrUnknownPack is returned when a pack id is not in the registry.
var ErrUnknownPack = errors.New("unknown template pack")

// PDFMode controls how filled sheets become PDF files.
type PDFMode string

const (
	// PDFModePerSheet renders one PDF per output sheet, named after the
	// sheet, in declaration order.
	PDFModePerSheet PDFMode = "perSheet"
	// PDFModeSinglePDF renders all output sheets into one PDF.
	PDFModeSinglePDF PDFMode = "singlePdf"
)

// InputCell maps one caller-supplied input key onto a sheet/cell
// coordinate of the pack's template.
type InputCell struct {
	Key   string `json:"key"`
	Sheet string `json:"sheet"`
	Cell  string `json:"cell"`
}

// Pack is the declarative mapping for one document pack. Read-only at
// generation time.
type Pack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CaseType     models.CaseType `json:"case_type"`
	Subtype      string          `json:"subtype,omitempty"`
	DocumentType string          `json:"document_type"`
	TemplateFile string          `json:"template_file"`
	InputCells   []InputCell     `json:"input_cells"`
	OutputSheets []string        `json:"output_sheets"`
	PDFMode      PDFMode         `json:"pdf_mode"`
}

// Registry resolves pack ids to their mapping and physical template
// location.
type Registry struct {
	templatesDir string
	packs        map[string]Pack
	order        []string
}

func NewRegistry(templatesDir string) *Registry {
	r := &Registry{
		templatesDir: templatesDir,
		packs:        make(map[string]Pack),
	}
	for _, p := range defaultPacks() {
		r.packs[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

// Resolve returns the mapping for packID and the physical path of its
// template file. The file itself is only opened by the filler.
func (r *Registry) Resolve(packID string) (Pack, string, error) {
	p, ok := r.packs[packID]
	if !ok {
		return Pack{}, "", fmt.Errorf("%w: %s", ErrUnknownPack, packID)
	}
	return p, filepath.Join(r.templatesDir, p.TemplateFile), nil
}

// List returns all packs in registration order.
func (r *Registry) List() []Pack {
	out := make([]Pack, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.packs[id])
	}
	return out
}

func defaultPacks() []Pack {
	return []Pack{
		{
			ID:           "purchase-set",
			Name:         "Purchase document set",
			CaseType:     models.CaseTypePurchase,
			DocumentType: models.CaseTypePurchase.DocumentType(),
			TemplateFile: "purchase-set.xlsx",
			InputCells: []InputCell{
				{Key: "school_name", Sheet: "Memo", Cell: "B2"},
				{Key: "project_name", Sheet: "Memo", Cell: "C5"},
				{Key: "vendor_name", Sheet: "Memo", Cell: "C7"},
				{Key: "amount", Sheet: "Memo", Cell: "E9"},
				{Key: "amount_text", Sheet: "Memo", Cell: "C10"},
				{Key: "requested_by", Sheet: "Memo", Cell: "C14"},
				{Key: "school_name", Sheet: "Approval", Cell: "B2"},
				{Key: "vendor_name", Sheet: "Approval", Cell: "C6"},
				{Key: "amount", Sheet: "Approval", Cell: "E8"},
				{Key: "director_name", Sheet: "Approval", Cell: "C12"},
				{Key: "document_date", Sheet: "Approval", Cell: "E2"},
			},
			OutputSheets: []string{"Memo", "Approval"},
			PDFMode:      PDFModePerSheet,
		},
		{
			ID:           "hire-set",
			Name:         "Hire document set",
			CaseType:     models.CaseTypeHire,
			DocumentType: models.CaseTypeHire.DocumentType(),
			TemplateFile: "hire-set.xlsx",
			InputCells: []InputCell{
				{Key: "school_name", Sheet: "Memo", Cell: "B2"},
				{Key: "project_name", Sheet: "Memo", Cell: "C5"},
				{Key: "vendor_name", Sheet: "Memo", Cell: "C7"},
				{Key: "amount", Sheet: "Memo", Cell: "E9"},
				{Key: "requested_by", Sheet: "Memo", Cell: "C14"},
				{Key: "vendor_name", Sheet: "Agreement", Cell: "C4"},
				{Key: "amount", Sheet: "Agreement", Cell: "E6"},
				{Key: "amount_text", Sheet: "Agreement", Cell: "C7"},
				{Key: "director_name", Sheet: "Agreement", Cell: "C15"},
				{Key: "inspector_name", Sheet: "Inspection", Cell: "C10"},
				{Key: "document_date", Sheet: "Inspection", Cell: "E2"},
			},
			OutputSheets: []string{"Memo", "Agreement", "Inspection"},
			PDFMode:      PDFModePerSheet,
		},
		{
			ID:           "lunch-set",
			Name:         "School lunch report",
			CaseType:     models.CaseTypeLunch,
			DocumentType: models.CaseTypeLunch.DocumentType(),
			TemplateFile: "lunch-set.xlsx",
			InputCells: []InputCell{
				{Key: "school_name", Sheet: "LunchReport", Cell: "B2"},
				{Key: "month", Sheet: "LunchReport", Cell: "D3"},
				{Key: "student_count", Sheet: "LunchReport", Cell: "D5"},
				{Key: "amount", Sheet: "LunchReport", Cell: "E7"},
				{Key: "director_name", Sheet: "LunchReport", Cell: "C18"},
			},
			OutputSheets: []string{"LunchReport"},
			PDFMode:      PDFModeSinglePDF,
		},
		{
			ID:           "internet-set",
			Name:         "Internet expense memo",
			CaseType:     models.CaseTypeInternet,
			DocumentType: models.CaseTypeInternet.DocumentType(),
			TemplateFile: "internet-set.xlsx",
			InputCells: []InputCell{
				{Key: "school_name", Sheet: "InternetMemo", Cell: "B2"},
				{Key: "provider_name", Sheet: "InternetMemo", Cell: "C5"},
				{Key: "billing_period", Sheet: "InternetMemo", Cell: "C6"},
				{Key: "amount", Sheet: "InternetMemo", Cell: "E8"},
				{Key: "director_name", Sheet: "InternetMemo", Cell: "C14"},
			},
			OutputSheets: []string{"InternetMemo"},
			PDFMode:      PDFModeSinglePDF,
		},
	}
}
