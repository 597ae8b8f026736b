package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"
	"pdfcollab/internal/storage"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrForbidden         = errors.New("not authorized to view this document")
	ErrReaderNil         = errors.New("reader is nil")
	ErrNotPDF            = errors.New("only PDF files are allowed")
	ErrFileTooLarge      = errors.New("file size exceeds maximum limit")
	ErrTextRequired      = errors.New("comment text is required")
	ErrGuestNameRequired = errors.New("guest name is required")
	ErrEmailsRequired    = errors.New("valid email addresses are required")
	ErrAlreadyShared     = errors.New("document already shared with this user")
)

// pdfMagic is the signature expected in the first bytes of a PDF payload.
const pdfMagic = "%PDF-"

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the upload/list/delete use cases for documents.
// Viewing is handled by AccessService, which mints proxy tokens alongside.
type DocumentService interface {
	// Upload stores the PDF content in object storage, saves the metadata row,
	// and rolls back storage if the row insert fails. Only payloads starting
	// with the PDF signature are accepted, up to the configured byte ceiling.
	Upload(ctx context.Context, r io.Reader, originalFilename, title, contentType string, size int64, ownerID string) (*model.Document, error)

	// List returns documents owned by or shared with userID using limit/offset.
	List(ctx context.Context, userID string, limit, offset int) (*DocumentListResult, error)

	// Delete removes an owned document from both storage and repository.
	Delete(ctx context.Context, id, ownerID string) error
}

type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	maxBytes int64
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, maxBytes int64) DocumentService {
	return &documentService{store: store, repo: repo, maxBytes: maxBytes}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename, title, contentType string, size int64, ownerID string) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if ownerID == "" {
		return nil, ErrIDRequired
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	// The reported content type is advisory only; the payload signature decides.
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n < len(pdfMagic) || string(head) != pdfMagic {
		return nil, ErrNotPDF
	}
	body := io.MultiReader(bytes.NewReader(head), r)

	if title == "" {
		title = originalFilename
	}

	// Flat uuid key; doubles as the blob reference used by the proxy route.
	blobRef := uuid.New().String() + ".pdf"

	objInfo, err := s.store.Put(ctx, blobRef, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: "application/pdf",
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:            uuid.New().String(),
		Title:         title,
		DisplayName:   title,
		Filename:      originalFilename,
		BlobRef:       objInfo.Key,
		Size:          objInfo.Size,
		ContentType:   "application/pdf",
		OwnerID:       ownerID,
		SharedWith:    []string{},
		InvitedEmails: []string{},
		AccessTokens:  []string{},
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, blobRef); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, userID string, limit, offset int) (*DocumentListResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListForUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Delete removes an owned document from storage, then deletes its record.
// Non-owners get ErrNotFound: the lookup itself carries the ownership predicate.
func (s *documentService) Delete(ctx context.Context, id, ownerID string) error {
	if id == "" || ownerID == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.BlobRef); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
