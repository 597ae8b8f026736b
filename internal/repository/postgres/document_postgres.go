package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
//
// List-valued fields (shared_with, invited_emails, access_tokens) are stored as
// JSONB string arrays; membership checks use the jsonb ? operator so access
// predicates run inside the query.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, display_name, filename, blob_ref, size, content_type,
		owner_id, shared_with, invited_emails, share_token, access_tokens, created_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, display_name, filename, blob_ref, size, content_type,
			owner_id, shared_with, invited_emails, access_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.DisplayName,
		doc.Filename,
		doc.BlobRef,
		doc.Size,
		doc.ContentType,
		doc.OwnerID,
		mustJSON(doc.SharedWith),
		mustJSON(doc.InvitedEmails),
		mustJSON(doc.AccessTokens),
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByIDForUser fetches a document visible to userID (owner or shared).
// The predicate is part of the query: unauthorized callers see no row at all.
func (r *DocumentPostgres) FindByIDForUser(ctx context.Context, id, userID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND (owner_id = $2 OR shared_with ? $2)
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id, userID))
}

// FindOwned fetches a document only when ownerID owns it.
func (r *DocumentPostgres) FindOwned(ctx context.Context, id, ownerID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// FindByShareToken fetches a document by its long-lived share token.
func (r *DocumentPostgres) FindByShareToken(ctx context.Context, token string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE share_token = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, token))
}

// FindByBlobRef fetches the document whose stored content matches blobRef.
func (r *DocumentPostgres) FindByBlobRef(ctx context.Context, blobRef string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE blob_ref = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, blobRef))
}

// ListForUser returns documents owned by or shared with userID using
// LIMIT/OFFSET pagination and a total count under the same predicate.
func (r *DocumentPostgres) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE owner_id = $1 OR shared_with ? $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 OR shared_with ? $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
// Comment rows are removed by the ON DELETE CASCADE constraint.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// ReplaceAccessTokens overwrites the proxy access token list.
func (r *DocumentPostgres) ReplaceAccessTokens(ctx context.Context, id string, tokens []string) error {
	const q = `UPDATE documents SET access_tokens = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, mustJSON(tokens))
}

// SetShareToken unconditionally overwrites the share token, invalidating any
// previously distributed link.
func (r *DocumentPostgres) SetShareToken(ctx context.Context, id, token string) error {
	const q = `UPDATE documents SET share_token = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, token)
}

// EnsureShareToken sets candidate only when no token exists yet ("generate
// once, reuse thereafter") and returns the effective token.
func (r *DocumentPostgres) EnsureShareToken(ctx context.Context, id, candidate string) (string, error) {
	const q = `
		UPDATE documents
		SET share_token = COALESCE(share_token, $2)
		WHERE id = $1
		RETURNING share_token
	`
	var token string
	if err := r.db.QueryRowContext(ctx, q, id, candidate).Scan(&token); err != nil {
		return "", err
	}
	return token, nil
}

// AddSharedUser appends userID to the shared list in a single statement;
// the guard keeps the list duplicate-free under concurrent shares.
func (r *DocumentPostgres) AddSharedUser(ctx context.Context, id, userID string) error {
	const q = `
		UPDATE documents
		SET shared_with = shared_with || to_jsonb($2::text)
		WHERE id = $1 AND NOT shared_with ? $2
	`
	_, err := r.db.ExecContext(ctx, q, id, userID)
	return err
}

// ReplaceInvitedEmails overwrites the invited email allowlist.
func (r *DocumentPostgres) ReplaceInvitedEmails(ctx context.Context, id string, emails []string) error {
	const q = `UPDATE documents SET invited_emails = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, mustJSON(emails))
}

// InsertComment appends a single comment row. Appends are atomic row inserts,
// so concurrent commenters cannot clobber each other's writes.
func (r *DocumentPostgres) InsertComment(ctx context.Context, cm *model.Comment) error {
	const q = `
		INSERT INTO comments (id, document_id, parent_id, depth, author_id, guest_name, guest_email, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, q,
		cm.ID,
		cm.DocumentID,
		nullIfEmpty(cm.ParentID),
		cm.Depth,
		nullIfEmpty(cm.Author.UserID),
		nullIfEmpty(cm.Author.Name),
		nullIfEmpty(cm.Author.Email),
		cm.Text,
		cm.CreatedAt,
	)
	return err
}

const commentColumns = `id, document_id, COALESCE(parent_id::text, ''), depth,
		COALESCE(author_id::text, ''), COALESCE(guest_name, ''), COALESCE(guest_email, ''), body, created_at`

// FindCommentByID returns a single comment row scoped to the document, without replies.
func (r *DocumentPostgres) FindCommentByID(ctx context.Context, documentID, commentID string) (*model.Comment, error) {
	const q = `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE id = $1 AND document_id = $2
	`
	return scanComment(r.db.QueryRowContext(ctx, q, commentID, documentID))
}

// ListComments returns the document's comment tree. Rows come back in
// insertion order (seq), which is also display order at every tier.
func (r *DocumentPostgres) ListComments(ctx context.Context, documentID string) ([]model.Comment, error) {
	const q = `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE document_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []model.Comment
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		flat = append(flat, *cm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildCommentTree(flat), nil
}

// buildCommentTree nests flat rows into the three-tier tree. Children are
// attached deepest tier first so that shallower copies already carry their
// replies when they are attached themselves.
func buildCommentTree(flat []model.Comment) []model.Comment {
	byID := make(map[string]*model.Comment, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}

	for depth := model.MaxCommentDepth; depth > 0; depth-- {
		for i := range flat {
			if flat[i].Depth != depth {
				continue
			}
			if parent, ok := byID[flat[i].ParentID]; ok {
				parent.Replies = append(parent.Replies, flat[i])
			}
		}
	}

	top := make([]model.Comment, 0)
	for i := range flat {
		if flat[i].Depth == 0 {
			top = append(top, flat[i])
		}
	}
	return top
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d          model.Document
		shared     []byte
		invited    []byte
		tokens     []byte
		shareToken sql.NullString
	)
	if err := s.Scan(
		&d.ID,
		&d.Title,
		&d.DisplayName,
		&d.Filename,
		&d.BlobRef,
		&d.Size,
		&d.ContentType,
		&d.OwnerID,
		&shared,
		&invited,
		&shareToken,
		&tokens,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalList(shared, &d.SharedWith); err != nil {
		return nil, fmt.Errorf("decode shared_with: %w", err)
	}
	if err := unmarshalList(invited, &d.InvitedEmails); err != nil {
		return nil, fmt.Errorf("decode invited_emails: %w", err)
	}
	if err := unmarshalList(tokens, &d.AccessTokens); err != nil {
		return nil, fmt.Errorf("decode access_tokens: %w", err)
	}
	d.ShareToken = shareToken.String
	d.Comments = []model.Comment{}
	return &d, nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var (
		cm         model.Comment
		authorID   string
		guestName  string
		guestEmail string
	)
	if err := s.Scan(
		&cm.ID,
		&cm.DocumentID,
		&cm.ParentID,
		&cm.Depth,
		&authorID,
		&guestName,
		&guestEmail,
		&cm.Text,
		&cm.CreatedAt,
	); err != nil {
		return nil, err
	}
	if authorID != "" {
		cm.Author = model.RegisteredAuthor(authorID)
	} else {
		cm.Author = model.GuestAuthor(guestName, guestEmail)
	}
	cm.Replies = []model.Comment{}
	return &cm, nil
}

// execOne runs an update that must target an existing row and maps a zero
// rows-affected result to sql.ErrNoRows.
func (r *DocumentPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func unmarshalList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []string{}
	}
	return nil
}

func mustJSON(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return b
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
