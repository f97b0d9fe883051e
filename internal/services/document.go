package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"SP-DOCS/internal/models"
	"SP-DOCS/internal/packs"
	"SP-DOCS/internal/storage"
)

// DocumentService orchestrates one generation event: validate case and
// pack, fill the template, convert to PDFs, allocate the running number,
// persist document rows, and audit. Each stage's failure short-circuits
// the request; no document rows exist for a failed generation.
type DocumentService struct {
	cases     CaseStore
	documents DocumentStore
	overrides PackOverrideStore
	registry  *packs.Registry
	filler    *TemplateFiller
	converter *ConversionClient
	archiver  *ArchiveBuilder
	allocator *RunningNumberAllocator
	audit     *AuditService
	stats     *StatisticsService
	storage   storage.StorageClient
	workDir   string
	log       *logrus.Logger
}

type DocumentServiceParams struct {
	Cases     CaseStore
	Documents DocumentStore
	Overrides PackOverrideStore
	Registry  *packs.Registry
	Filler    *TemplateFiller
	Converter *ConversionClient
	Archiver  *ArchiveBuilder
	Allocator *RunningNumberAllocator
	Audit     *AuditService
	Stats     *StatisticsService
	Storage   storage.StorageClient
	WorkDir   string
	Log       *logrus.Logger
}

func NewDocumentService(p DocumentServiceParams) *DocumentService {
	return &DocumentService{
		cases:     p.Cases,
		documents: p.Documents,
		overrides: p.Overrides,
		registry:  p.Registry,
		filler:    p.Filler,
		converter: p.Converter,
		archiver:  p.Archiver,
		allocator: p.Allocator,
		audit:     p.Audit,
		stats:     p.Stats,
		storage:   p.Storage,
		workDir:   p.WorkDir,
		log:       p.Log,
	}
}

// GenerateResult is the file manifest of one successful generation
// event.
type GenerateResult struct {
	Documents     []*models.DocumentRecord `json:"documents"`
	Zip           *models.DocumentRecord   `json:"zip"`
	Files         []string                 `json:"files"`
	RunningNumber string                   `json:"running_number"`
}

// generationSnapshot is the after-image recorded on GENERATE audit
// entries.
type generationSnapshot struct {
	PackID        string   `json:"pack_id"`
	RunningNumber string   `json:"running_number"`
	Files         []string `json:"files"`
	Archive       string   `json:"archive"`
}

// GeneratePack runs the full pipeline for one pack against one case.
// pdfMode overrides the pack's default mode when non-empty.
func (s *DocumentService) GeneratePack(ctx context.Context, orgID, userID, caseID, packID string, inputs map[string]string, pdfMode packs.PDFMode, meta RequestMeta) (*GenerateResult, error) {
	// Once started, generation runs to completion or failure regardless
	// of caller presence. A client disconnect mid-pipeline must not
	// abort the request: an abort between allocation and persistence
	// would burn a sequence number. The converter keeps its own
	// deadline.
	ctx = context.WithoutCancel(ctx)

	pcase, err := s.cases.Get(ctx, orgID, caseID)
	if err != nil {
		return nil, err
	}

	pack, templatePath, err := s.registry.Resolve(packID)
	if err != nil {
		return nil, &NotFoundError{Entity: "template pack", ID: packID}
	}
	if pack.CaseType != pcase.CaseType {
		return nil, fmt.Errorf("%w: pack %s, case type %s", ErrPackMismatch, packID, pcase.CaseType)
	}
	active, err := s.packActive(ctx, orgID, packID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("%w: %s", ErrPackInactive, packID)
	}

	mode := pack.PDFMode
	if pdfMode != "" {
		mode = pdfMode
	}

	// Unique per-request subdirectory so concurrent generations for the
	// same case cannot race on working files.
	work := filepath.Join(s.workDir, orgID, caseID, uuid.New().String())
	if err := os.MkdirAll(work, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	filled := filepath.Join(work, pack.ID+".xlsx")
	if err := s.filler.Fill(templatePath, pack.InputCells, inputs, filled); err != nil {
		return nil, err
	}

	conv, err := s.converter.Convert(ctx, filled, work, pack.OutputSheets, mode)
	if err != nil {
		return nil, err
	}

	// One allocation per generation event: every produced file and the
	// archive share this number.
	number, err := s.allocator.Allocate(ctx, orgID, pcase.FiscalYear, pack.DocumentType, userID, meta)
	if err != nil {
		return nil, err
	}

	archiveName := number + ".zip"
	archivePath, err := s.archiver.Bundle(conv.Files, work, archiveName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	docs := make([]*models.DocumentRecord, 0, len(conv.Files)+1)
	for _, f := range conv.Files {
		doc, err := s.storeOutput(ctx, orgID, caseID, pack, number, f, models.FileTypePDF, now)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	zipDoc, err := s.storeOutput(ctx, orgID, caseID, pack, number, archivePath, models.FileTypeZip, now)
	if err != nil {
		return nil, err
	}

	all := append(append([]*models.DocumentRecord{}, docs...), zipDoc)
	if err := s.documents.CreateBatch(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to persist document records: %w", err)
	}

	_ = s.audit.Record(ctx, AuditEntry{
		OrganizationID: orgID,
		ActorID:        userID,
		Action:         models.ActionGenerate,
		EntityType:     "document",
		EntityID:       caseID,
		CaseID:         caseID,
		After: generationSnapshot{
			PackID:        pack.ID,
			RunningNumber: number,
			Files:         conv.Files,
			Archive:       archiveName,
		},
		Meta: meta,
	})
	if s.stats != nil {
		s.stats.RecordGeneration(orgID, pack.ID)
	}

	s.log.WithFields(logrus.Fields{
		"module":         "documents",
		"org_id":         orgID,
		"case_id":        caseID,
		"pack_id":        pack.ID,
		"running_number": number,
		"files":          len(conv.Files),
	}).Info("document pack generated")

	return &GenerateResult{
		Documents:     docs,
		Zip:           zipDoc,
		Files:         conv.Files,
		RunningNumber: number,
	}, nil
}

func (s *DocumentService) storeOutput(ctx context.Context, orgID, caseID string, pack packs.Pack, number, path string, fileType models.FileType, generatedAt time.Time) (*models.DocumentRecord, error) {
	fileName := filepath.Base(path)

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open produced file %s: %w", path, err)
	}
	defer src.Close()

	contentType := "application/pdf"
	if fileType == models.FileTypeZip {
		contentType = "application/zip"
	}
	objectName := storage.GenerateDocumentObjectName(orgID, caseID, number, fileName)
	result, err := s.storage.UploadFile(ctx, src, objectName, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store produced file %s: %w", fileName, err)
	}

	return &models.DocumentRecord{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CaseID:         caseID,
		PackID:         pack.ID,
		DocumentType:   pack.DocumentType,
		FileType:       fileType,
		FileName:       fileName,
		FilePath:       path,
		StoragePath:    result.ObjectName,
		RunningNumber:  number,
		DocumentDate:   generatedAt,
		GeneratedAt:    generatedAt,
	}, nil
}

func (s *DocumentService) packActive(ctx context.Context, orgID, packID string) (bool, error) {
	override, err := s.overrides.Get(ctx, orgID, packID)
	if err != nil {
		return false, fmt.Errorf("failed to look up pack override: %w", err)
	}
	// No override row means the pack is active.
	if override == nil {
		return true, nil
	}
	return override.IsActive, nil
}

// overrideSnapshot is the before/after shape recorded on OVERRIDE audit
// entries.
type overrideSnapshot struct {
	ManualNumber string    `json:"manual_number"`
	DocumentDate time.Time `json:"document_date"`
}

// OverrideNumber sets the manual document number. Only legal when the
// owning case is flagged backdated; the reason is mandatory and recorded
// verbatim on the audit entry.
func (s *DocumentService) OverrideNumber(ctx context.Context, orgID, userID, documentID, number, reason string, documentDate *time.Time, meta RequestMeta) (*models.DocumentRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	doc, err := s.documents.Get(ctx, orgID, documentID)
	if err != nil {
		return nil, err
	}
	pcase, err := s.cases.Get(ctx, orgID, doc.CaseID)
	if err != nil {
		return nil, err
	}
	if !pcase.IsBackdated {
		return nil, ErrOverrideNotAllowed
	}

	before := overrideSnapshot{ManualNumber: doc.ManualNumber, DocumentDate: doc.DocumentDate}
	doc.ManualNumber = number
	if documentDate != nil {
		doc.DocumentDate = *documentDate
	}
	if err := s.documents.UpdateOverride(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist number override: %w", err)
	}

	_ = s.audit.Record(ctx, AuditEntry{
		OrganizationID: orgID,
		ActorID:        userID,
		Action:         models.ActionOverride,
		EntityType:     "document",
		EntityID:       doc.ID,
		CaseID:         doc.CaseID,
		Before:         before,
		After:          overrideSnapshot{ManualNumber: doc.ManualNumber, DocumentDate: doc.DocumentDate},
		Reason:         reason,
		Meta:           meta,
	})
	if s.stats != nil {
		s.stats.RecordOverride(orgID)
	}

	return doc, nil
}

// ListDocuments returns the case's document rows, newest generation
// first.
func (s *DocumentService) ListDocuments(ctx context.Context, orgID, caseID string) ([]models.DocumentRecord, error) {
	if _, err := s.cases.Get(ctx, orgID, caseID); err != nil {
		return nil, err
	}
	return s.documents.ListByCase(ctx, orgID, caseID)
}

// NextRunningNumber allocates and returns a formatted number outside the
// generation pipeline, for administrative and testing use. The
// allocation is real: the counter advances and the audit entry is
// written.
func (s *DocumentService) NextRunningNumber(ctx context.Context, orgID string, fiscalYear int, documentType, userID string, meta RequestMeta) (string, error) {
	return s.allocator.Allocate(ctx, orgID, fiscalYear, documentType, userID, meta)
}

// OpenDocument streams a stored output file for download.
func (s *DocumentService) OpenDocument(ctx context.Context, orgID, documentID string) (*models.DocumentRecord, io.ReadCloser, error) {
	doc, err := s.documents.Get(ctx, orgID, documentID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.storage.ReadFile(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored document %s: %w", doc.StoragePath, err)
	}
	if s.stats != nil {
		s.stats.RecordDownload(orgID, doc.PackID)
	}
	return doc, r, nil
}
