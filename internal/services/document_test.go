package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SP-DOCS/internal/models"
	"SP-DOCS/internal/packs"
	"SP-DOCS/internal/storage"
)

type pipelineFixture struct {
	service   *DocumentService
	cases     *fakeCaseStore
	documents *fakeDocumentStore
	overrides *fakePackOverrideStore
	audits    *fakeAuditStore
	storage   *storage.LocalStorageClient
	converts  *int
}

// renderHandler mimics the external rendering service: it writes one PDF
// per requested sheet (or a single PDF) into the requested output
// directory, the way the real service shares a disk with the API.
func renderHandler(calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++
		var req ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		var files []string
		if req.Mode == string(packs.PDFModeSinglePDF) {
			p := filepath.Join(req.OutputDir, "combined.pdf")
			os.WriteFile(p, []byte("%PDF-1.4 combined"), 0644)
			files = []string{p}
		} else {
			for _, s := range req.Sheets {
				p := filepath.Join(req.OutputDir, s+".pdf")
				os.WriteFile(p, []byte("%PDF-1.4 "+s), 0644)
				files = append(files, p)
			}
		}
		json.NewEncoder(w).Encode(ConvertResult{Files: files})
	}
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	templatesDir := t.TempDir()
	registry := packs.NewRegistry(templatesDir)
	for _, p := range registry.List() {
		buildTemplate(t, templatesDir, p.TemplateFile, p.OutputSheets)
	}

	calls := 0
	srv := httptest.NewServer(renderHandler(&calls))
	t.Cleanup(srv.Close)

	store, err := storage.NewLocalStorageClient(t.TempDir(), "", "test-key")
	require.NoError(t, err)

	caseStore := newFakeCaseStore()
	docStore := &fakeDocumentStore{}
	overrideStore := newFakePackOverrideStore()
	auditStore := &fakeAuditStore{}
	audit := NewAuditService(auditStore, testLogger())

	service := NewDocumentService(DocumentServiceParams{
		Cases:     caseStore,
		Documents: docStore,
		Overrides: overrideStore,
		Registry:  registry,
		Filler:    NewTemplateFiller(testLogger()),
		Converter: NewConversionClient(srv.URL, 5*time.Second, testLogger()),
		Archiver:  NewArchiveBuilder(),
		Allocator: NewRunningNumberAllocator(newFakeCounterStore(), audit),
		Audit:     audit,
		Storage:   store,
		WorkDir:   t.TempDir(),
		Log:       testLogger(),
	})

	return &pipelineFixture{
		service:   service,
		cases:     caseStore,
		documents: docStore,
		overrides: overrideStore,
		audits:    auditStore,
		storage:   store,
		converts:  &calls,
	}
}

func (f *pipelineFixture) addCase(t *testing.T, id string, caseType models.CaseType, backdated bool) *models.ProcurementCase {
	t.Helper()
	pcase := &models.ProcurementCase{
		ID:             id,
		OrganizationID: "org-1",
		CaseType:       caseType,
		Title:          "Whiteboard purchase",
		FiscalYear:     2567,
		IsBackdated:    backdated,
	}
	require.NoError(t, f.cases.Create(context.Background(), pcase))
	return pcase
}

func TestGeneratePackSuccess(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	inputs := map[string]string{"school_name": "Ban Nong Bua School", "amount": "4,500.00"}
	result, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", inputs, "", RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "PURCHASE-2567-0001", result.RunningNumber)
	// purchase-set renders Memo and Approval, plus the zip.
	require.Len(t, result.Documents, 2)
	require.NotNil(t, result.Zip)
	assert.Equal(t, models.FileTypeZip, result.Zip.FileType)
	assert.Equal(t, "PURCHASE-2567-0001.zip", result.Zip.FileName)
	assert.Equal(t, 3, f.documents.count())

	// Every row of the event shares the allocated number.
	for _, d := range append(result.Documents, result.Zip) {
		assert.Equal(t, "PURCHASE-2567-0001", d.RunningNumber)
		assert.Equal(t, "purchase-set", d.PackID)

		// The output file was uploaded under the document path.
		_, statErr := os.Stat(f.storage.GetFilePath(d.StoragePath))
		assert.NoError(t, statErr)
	}

	generated := f.audits.byAction(models.ActionGenerate)
	require.Len(t, generated, 1)
	assert.Equal(t, "case-1", generated[0].CaseID)
	assert.Contains(t, generated[0].After, "PURCHASE-2567-0001")
}

func TestGenerateAdvancesPerEvent(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	first, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)
	second, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "PURCHASE-2567-0001", first.RunningNumber)
	assert.Equal(t, "PURCHASE-2567-0002", second.RunningNumber)
}

func TestGenerateSinglePDFMode(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypeLunch, false)

	result, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "lunch-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "LUNCH-2567-0001", result.RunningNumber)
	assert.Len(t, result.Documents, 1)
}

func TestGenerateConversionFailureLeavesNoRows(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "renderer crashed"})
	}))
	t.Cleanup(srv.Close)
	broken := NewConversionClient(srv.URL, time.Second, testLogger())
	f.service.converter = broken

	_, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "renderer crashed", convErr.Detail)

	// No document rows, no GENERATE audit entry, counter never advanced.
	assert.Equal(t, 0, f.documents.count())
	assert.Empty(t, f.audits.byAction(models.ActionGenerate))
	assert.Empty(t, f.audits.byAction(models.ActionCreate))
}

func TestGenerateRunsToCompletionAfterClientDisconnect(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	// A disconnected client hands the pipeline an already-canceled
	// context. Generation must still run to completion: aborting between
	// allocation and persistence would burn a sequence number.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service.GeneratePack(ctx, "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "PURCHASE-2567-0001", result.RunningNumber)
	assert.Equal(t, 3, f.documents.count())
	assert.Len(t, f.audits.byAction(models.ActionGenerate), 1)
}

func TestGeneratePackInactive(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	require.NoError(t, f.overrides.Upsert(context.Background(), &models.PackOverride{
		ID: "ov-1", OrganizationID: "org-1", PackID: "purchase-set", IsActive: false,
	}))

	_, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.ErrorIs(t, err, ErrPackInactive)
	assert.Equal(t, 0, *f.converts)
}

func TestGeneratePackMismatch(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	_, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "hire-set", nil, "", RequestMeta{})
	require.ErrorIs(t, err, ErrPackMismatch)
}

func TestGenerateUnknownPack(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	_, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "no-such-pack", nil, "", RequestMeta{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateCaseNotFound(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "absent", "purchase-set", nil, "", RequestMeta{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateTenantIsolation(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	// Another organization cannot reach org-1's case.
	_, err := f.service.GeneratePack(context.Background(), "org-2", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOverrideNumberRequiresReason(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.service.OverrideNumber(context.Background(), "org-1", "user-1", "doc-1", "7/2567", "  ", nil, RequestMeta{})
	require.ErrorIs(t, err, ErrReasonRequired)
}

func TestOverrideNumberRequiresBackdatedCase(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	result, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	_, err = f.service.OverrideNumber(context.Background(), "org-1", "user-1", result.Documents[0].ID, "7/2567", "paper trail catch-up", nil, RequestMeta{})
	require.ErrorIs(t, err, ErrOverrideNotAllowed)
}

func TestOverrideNumberSuccess(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, true)

	result, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	docDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	doc, err := f.service.OverrideNumber(context.Background(), "org-1", "user-1", result.Documents[0].ID, "7/2567", "backdated purchase regularization", &docDate, RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "7/2567", doc.ManualNumber)
	assert.Equal(t, "7/2567", doc.EffectiveNumber())
	assert.Equal(t, docDate, doc.DocumentDate)
	// The allocated number stays on the row untouched.
	assert.Equal(t, "PURCHASE-2567-0001", doc.RunningNumber)

	overridden := f.audits.byAction(models.ActionOverride)
	require.Len(t, overridden, 1)
	assert.Equal(t, "backdated purchase regularization", overridden[0].Reason)
	assert.Contains(t, overridden[0].After, "7/2567")
}

func TestListDocumentsUnknownCase(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.service.ListDocuments(context.Background(), "org-1", "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenDocumentStreamsStoredFile(t *testing.T) {
	f := newPipelineFixture(t)
	f.addCase(t, "case-1", models.CaseTypePurchase, false)

	result, err := f.service.GeneratePack(context.Background(), "org-1", "user-1", "case-1", "purchase-set", nil, "", RequestMeta{})
	require.NoError(t, err)

	doc, reader, err := f.service.OpenDocument(context.Background(), "org-1", result.Documents[0].ID)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF-1.4")
	assert.Equal(t, result.Documents[0].ID, doc.ID)
}
