package repository

import (
	"context"

	"pdfcollab/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
//
// The Find* lookups bake the access predicate into the query itself, so an
// unauthorized caller and a missing row are indistinguishable (both surface
// sql.ErrNoRows). Comment tree rows live in their own table and are appended
// with single-row inserts, never by rewriting the whole document.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByIDForUser returns the document iff userID is its owner or a member
	// of its shared list.
	FindByIDForUser(ctx context.Context, id, userID string) (*model.Document, error)

	// FindOwned returns the document iff ownerID owns it.
	FindOwned(ctx context.Context, id, ownerID string) (*model.Document, error)

	// FindByShareToken returns the document carrying the given share token.
	FindByShareToken(ctx context.Context, token string) (*model.Document, error)

	// FindByBlobRef returns the document whose stored content matches blobRef.
	FindByBlobRef(ctx context.Context, blobRef string) (*model.Document, error)

	// ListForUser returns a page of documents owned by or shared with userID,
	// plus the total row count under the same predicate.
	ListForUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// ReplaceAccessTokens overwrites the proxy access token list.
	ReplaceAccessTokens(ctx context.Context, id string, tokens []string) error

	// SetShareToken unconditionally overwrites the share token.
	SetShareToken(ctx context.Context, id, token string) error

	// EnsureShareToken sets candidate as the share token only when none exists
	// and returns the effective token either way.
	EnsureShareToken(ctx context.Context, id, candidate string) (string, error)

	// AddSharedUser appends userID to the shared list unless already present.
	AddSharedUser(ctx context.Context, id, userID string) error

	// ReplaceInvitedEmails overwrites the invited email allowlist.
	ReplaceInvitedEmails(ctx context.Context, id string, emails []string) error

	// InsertComment appends a single comment row.
	InsertComment(ctx context.Context, cm *model.Comment) error

	// FindCommentByID returns a single comment row (no replies) scoped to the document.
	FindCommentByID(ctx context.Context, documentID, commentID string) (*model.Comment, error)

	// ListComments returns the document's full comment tree in insertion order.
	ListComments(ctx context.Context, documentID string) ([]model.Comment, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
