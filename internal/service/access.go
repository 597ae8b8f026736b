package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"
)

const (
	// accessTokenBytes sizes the short-lived proxy tokens; shareTokenBytes the
	// long-lived link tokens.
	accessTokenBytes = 16
	shareTokenBytes  = 32

	// A document keeps at most maxAccessTokens proxy tokens; once a mint pushes
	// the list past the cap it is trimmed to the newest keepAccessTokens.
	// Eviction is purely capacity-based: there is no expiry timestamp, so a
	// token stays valid until enough later mints push it out.
	maxAccessTokens  = 100
	keepAccessTokens = 50
)

// AccessService decides view-eligibility for documents and manages the token
// lifecycle backing shared and anonymous access.
//
// Callers are identified by a pre-verified user ID (empty string = anonymous);
// bearer decoding happens in the HTTP middleware.
type AccessService interface {
	// GetForViewer returns the document with its comment tree iff userID is the
	// owner or in the shared list, minting a fresh proxy access token.
	GetForViewer(ctx context.Context, documentID, userID string) (*model.DocumentView, error)

	// GetByShareToken resolves link-based access. With no email parameter, link
	// knowledge alone grants access. With an email that is not invited, access
	// requires the caller's credential to resolve to the owner or a shared user.
	GetByShareToken(ctx context.Context, shareToken, email, userID string) (*model.DocumentView, error)

	// MintShareToken generates a new share token for an owned document,
	// overwriting (and thereby invalidating) any previously distributed link.
	// It returns the share link.
	MintShareToken(ctx context.Context, documentID, ownerID string) (string, error)

	// ShareWithUser grants targetUserID persistent view access to an owned document.
	ShareWithUser(ctx context.Context, documentID, ownerID, targetUserID string) (*model.Document, error)

	// InviteEmails allowlists emails for share-link access. The share token is
	// created once and reused on later invites.
	InviteEmails(ctx context.Context, documentID, ownerID string, emails []string) (*model.InviteResult, error)

	// InvitedUsers lists the invite allowlist and the shared user ids of an owned document.
	InvitedUsers(ctx context.Context, documentID, ownerID string) (*model.InvitedUsers, error)

	// RevokeInvite removes an email from the allowlist and returns the remainder.
	RevokeInvite(ctx context.Context, documentID, ownerID, email string) ([]string, error)

	// AuthorizeProxy authorizes a byte-level fetch for the document holding
	// blobRef: either the credential resolves to owner/shared, or the access
	// token is currently in the document's token list. Either path alone suffices.
	AuthorizeProxy(ctx context.Context, blobRef, userID, accessToken string) (*model.Document, error)
}

type accessService struct {
	repo      repository.DocumentRepository
	clientURL string
}

// NewAccessService constructs an AccessService. clientURL, when set, is
// prepended to generated /shared/<token> links.
func NewAccessService(repo repository.DocumentRepository, clientURL string) AccessService {
	return &accessService{repo: repo, clientURL: clientURL}
}

func (s *accessService) GetForViewer(ctx context.Context, documentID, userID string) (*model.DocumentView, error) {
	if documentID == "" || userID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByIDForUser(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildView(ctx, doc)
}

func (s *accessService) GetByShareToken(ctx context.Context, shareToken, email, userID string) (*model.DocumentView, error) {
	if shareToken == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByShareToken(ctx, shareToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// No email parameter: possession of the link is sufficient.
	// With an email that is not on the allowlist, fall back to the caller's
	// credential; only the owner or a shared user passes.
	if email != "" && !doc.IsInvited(email) {
		if !doc.IsViewableBy(userID) {
			return nil, ErrForbidden
		}
	}

	return s.buildView(ctx, doc)
}

func (s *accessService) MintShareToken(ctx context.Context, documentID, ownerID string) (string, error) {
	if documentID == "" || ownerID == "" {
		return "", ErrIDRequired
	}
	if _, err := s.repo.FindOwned(ctx, documentID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	token, err := randomToken(shareTokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetShareToken(ctx, documentID, token); err != nil {
		return "", fmt.Errorf("set share token: %w", err)
	}
	return s.shareLink(token), nil
}

func (s *accessService) ShareWithUser(ctx context.Context, documentID, ownerID, targetUserID string) (*model.Document, error) {
	if documentID == "" || ownerID == "" || targetUserID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindOwned(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// The owner is never enumerated in the shared list.
	if doc.IsViewableBy(targetUserID) {
		return nil, ErrAlreadyShared
	}
	if err := s.repo.AddSharedUser(ctx, documentID, targetUserID); err != nil {
		return nil, fmt.Errorf("add shared user: %w", err)
	}
	doc.SharedWith = append(doc.SharedWith, targetUserID)
	return doc, nil
}

func (s *accessService) InviteEmails(ctx context.Context, documentID, ownerID string, emails []string) (*model.InviteResult, error) {
	if documentID == "" || ownerID == "" {
		return nil, ErrIDRequired
	}
	var clean []string
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			clean = append(clean, e)
		}
	}
	if len(clean) == 0 {
		return nil, ErrEmailsRequired
	}

	doc, err := s.repo.FindOwned(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Generate once, reuse thereafter: an existing token keeps previously
	// distributed invite links valid.
	candidate, err := randomToken(shareTokenBytes)
	if err != nil {
		return nil, err
	}
	token, err := s.repo.EnsureShareToken(ctx, documentID, candidate)
	if err != nil {
		return nil, fmt.Errorf("ensure share token: %w", err)
	}

	invited := doc.InvitedEmails
	changed := false
	for _, e := range clean {
		if !doc.IsInvited(e) {
			invited = append(invited, e)
			doc.InvitedEmails = invited
			changed = true
		}
	}
	if changed {
		if err := s.repo.ReplaceInvitedEmails(ctx, documentID, invited); err != nil {
			return nil, fmt.Errorf("update invited emails: %w", err)
		}
	}

	return &model.InviteResult{
		Link:          s.shareLink(token),
		InvitedEmails: invited,
	}, nil
}

func (s *accessService) InvitedUsers(ctx context.Context, documentID, ownerID string) (*model.InvitedUsers, error) {
	if documentID == "" || ownerID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindOwned(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.InvitedUsers{
		InvitedEmails: doc.InvitedEmails,
		SharedWith:    doc.SharedWith,
	}, nil
}

func (s *accessService) RevokeInvite(ctx context.Context, documentID, ownerID, email string) ([]string, error) {
	if documentID == "" || ownerID == "" || email == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindOwned(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	remaining := make([]string, 0, len(doc.InvitedEmails))
	for _, e := range doc.InvitedEmails {
		if e != email {
			remaining = append(remaining, e)
		}
	}
	if err := s.repo.ReplaceInvitedEmails(ctx, documentID, remaining); err != nil {
		return nil, fmt.Errorf("update invited emails: %w", err)
	}
	return remaining, nil
}

func (s *accessService) AuthorizeProxy(ctx context.Context, blobRef, userID, accessToken string) (*model.Document, error) {
	if blobRef == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByBlobRef(ctx, blobRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !doc.IsViewableBy(userID) && !doc.HasAccessToken(accessToken) {
		return nil, ErrForbidden
	}
	return doc, nil
}

// buildView loads the comment tree and mints a fresh proxy access token.
// A new token is minted on every successful resolve; tokens are neither
// deduplicated nor consumed on use.
func (s *accessService) buildView(ctx context.Context, doc *model.Document) (*model.DocumentView, error) {
	comments, err := s.repo.ListComments(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	doc.Comments = comments

	token, err := randomToken(accessTokenBytes)
	if err != nil {
		return nil, err
	}
	doc.AccessTokens = appendAccessToken(doc.AccessTokens, token)
	if err := s.repo.ReplaceAccessTokens(ctx, doc.ID, doc.AccessTokens); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}

	return &model.DocumentView{Document: *doc, AccessToken: token}, nil
}

// appendAccessToken appends tok and trims the list to the newest
// keepAccessTokens entries once it exceeds maxAccessTokens, preserving
// relative order.
func appendAccessToken(tokens []string, tok string) []string {
	out := append(append([]string{}, tokens...), tok)
	if len(out) > maxAccessTokens {
		out = out[len(out)-keepAccessTokens:]
	}
	return out
}

func (s *accessService) shareLink(token string) string {
	return s.clientURL + "/shared/" + token
}

// randomToken returns n random bytes hex-encoded.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
