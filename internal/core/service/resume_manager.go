package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/pkg/metrics"
)

// DefaultMaxResumeBytes is the upload limit used when none is configured.
const DefaultMaxResumeBytes int64 = 5 << 20

const (
	pdfContentType   = "application/pdf"
	maxStoredNameLen = 100
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ResumeManager validates, stores and replaces student resume files. It owns
// the invariant that a student has at most one live resume file.
type ResumeManager struct {
	store    ports.FileStore
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
	newToken func() string
}

func NewResumeManager(store ports.FileStore, maxBytes int64, log zerolog.Logger) *ResumeManager {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResumeBytes
	}
	return &ResumeManager{
		store:    store,
		maxBytes: maxBytes,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
	}
}

// MaxBytes is the largest accepted upload.
func (m *ResumeManager) MaxBytes() int64 { return m.maxBytes }

// Check validates an upload without touching the store.
func (m *ResumeManager) Check(up ports.Upload) error {
	if !strings.EqualFold(filepath.Ext(up.Filename), ".pdf") {
		return domain.Validation("Only PDF resumes are accepted.")
	}
	if ct := strings.TrimSpace(up.ContentType); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != pdfContentType && mt != "application/octet-stream") {
			return domain.Validation("Only PDF resumes are accepted.")
		}
	}
	if len(up.Data) == 0 {
		return domain.Validation("The uploaded resume is empty.")
	}
	if int64(len(up.Data)) > m.maxBytes {
		return domain.Validation(fmt.Sprintf("Resume must be %s or smaller.", humanSize(m.maxBytes)))
	}
	if !mimetype.Detect(up.Data).Is(pdfContentType) {
		return domain.Validation("The uploaded file is not a valid PDF.")
	}
	return nil
}

// Store validates up and writes it under a fresh collision-free name.
func (m *ResumeManager) Store(ctx context.Context, ownerID string, up ports.Upload) (*domain.ResumeAsset, error) {
	if err := m.Check(up); err != nil {
		metrics.ResumeOperationsTotal.WithLabelValues("store", "rejected").Inc()
		return nil, err
	}

	original := sanitizeFilename(up.Filename)
	asset := &domain.ResumeAsset{
		OwnerID:      ownerID,
		StoredName:   storedName(m.newToken(), original),
		OriginalName: original,
		ContentType:  pdfContentType,
		SizeBytes:    int64(len(up.Data)),
		Pages:        pageCount(up.Data),
		CreatedAt:    m.now(),
	}

	if err := m.store.Save(ctx, asset.StoredName, up.Data); err != nil {
		metrics.ResumeOperationsTotal.WithLabelValues("store", "error").Inc()
		return nil, domain.Storage("Could not save your resume. Please try again.", err)
	}
	metrics.ResumeOperationsTotal.WithLabelValues("store", "ok").Inc()

	m.log.Info().
		Str("account_id", ownerID).
		Str("stored_name", asset.StoredName).
		Int64("size", asset.SizeBytes).
		Int("pages", asset.Pages).
		Msg("resume stored")
	return asset, nil
}

// Replace stores up, runs commit with the new asset and, once commit has
// succeeded, deletes old. A failing commit discards the new file instead so
// the previous resume stays live. A failed delete of old is only logged.
func (m *ResumeManager) Replace(
	ctx context.Context,
	ownerID string,
	old *domain.ResumeAsset,
	up ports.Upload,
	commit func(*domain.ResumeAsset) error,
) (*domain.ResumeAsset, error) {
	asset, err := m.Store(ctx, ownerID, up)
	if err != nil {
		return nil, err
	}

	if err := commit(asset); err != nil {
		m.Remove(ctx, asset)
		return nil, err
	}

	if old != nil && old.StoredName != asset.StoredName {
		m.Remove(ctx, old)
	}
	return asset, nil
}

// Remove deletes asset, logging failures.
func (m *ResumeManager) Remove(ctx context.Context, asset *domain.ResumeAsset) {
	if asset == nil || asset.StoredName == "" {
		return
	}
	if err := m.store.Delete(ctx, asset.StoredName); err != nil {
		metrics.ResumeOperationsTotal.WithLabelValues("delete", "error").Inc()
		m.log.Warn().Err(err).Str("stored_name", asset.StoredName).Msg("failed to delete resume file")
		return
	}
	metrics.ResumeOperationsTotal.WithLabelValues("delete", "ok").Inc()
}

// Exists reports whether the file behind asset is still in the store.
func (m *ResumeManager) Exists(ctx context.Context, asset *domain.ResumeAsset) (bool, error) {
	if asset == nil || asset.StoredName == "" {
		return false, nil
	}
	ok, err := m.store.Exists(ctx, asset.StoredName)
	if err != nil {
		return false, domain.Storage("Could not check your resume.", err)
	}
	return ok, nil
}

// Fetch opens the file behind asset. A dangling reference yields
// domain.ErrNotFound.
func (m *ResumeManager) Fetch(ctx context.Context, asset *domain.ResumeAsset) (*ports.ResumeFile, error) {
	if asset == nil || asset.StoredName == "" {
		return nil, domain.NotFound("Resume not found.")
	}
	body, size, err := m.store.Open(ctx, asset.StoredName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ResumeOperationsTotal.WithLabelValues("fetch", "missing").Inc()
			m.log.Warn().Str("stored_name", asset.StoredName).Str("account_id", asset.OwnerID).Msg("resume reference points at a missing file")
			return nil, domain.NotFound("Resume not found.")
		}
		metrics.ResumeOperationsTotal.WithLabelValues("fetch", "error").Inc()
		return nil, domain.Storage("Could not open the resume.", err)
	}
	metrics.ResumeOperationsTotal.WithLabelValues("fetch", "ok").Inc()

	name := asset.OriginalName
	if name == "" {
		name = asset.StoredName
	}
	return &ports.ResumeFile{
		Name:        name,
		ContentType: pdfContentType,
		Size:        size,
		Body:        body,
	}, nil
}

// sanitizeFilename reduces name to its base and the characters [A-Za-z0-9._-].
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._-")
	if name == "" || strings.EqualFold(name, "pdf") {
		return "resume.pdf"
	}
	return name
}

// storedName prefixes name with token and caps the result, keeping the extension.
func storedName(token, name string) string {
	full := token + "_" + name
	if len(full) <= maxStoredNameLen {
		return full
	}
	ext := filepath.Ext(name)
	return full[:maxStoredNameLen-len(ext)] + ext
}

// pageCount parses data as a PDF and returns its page count, or zero when the
// document cannot be parsed.
func pageCount(data []byte) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}

func humanSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", n>>10)
}
