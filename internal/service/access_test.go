package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"pdfcollab/internal/model"
	repoMocks "pdfcollab/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAccessService_GetForViewer(t *testing.T) {
	ctx := context.Background()

	t.Run("owner resolves and a fresh token is minted", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "https://app.example.com")

		doc := &model.Document{ID: "doc-1", OwnerID: "owner-1", AccessTokens: []string{"old-token"}}
		mRepo.On("FindByIDForUser", ctx, "doc-1", "owner-1").Return(doc, nil)
		mRepo.On("ListComments", ctx, "doc-1").Return([]model.Comment{{ID: "c1"}}, nil)

		var persisted []string
		mRepo.On("ReplaceAccessTokens", ctx, "doc-1", mock.MatchedBy(func(tokens []string) bool {
			persisted = tokens
			return true
		})).Return(nil)

		view, err := svc.GetForViewer(ctx, "doc-1", "owner-1")
		assert.NoError(t, err)
		assert.Len(t, view.AccessToken, 32) // 16 random bytes hex-encoded
		assert.Equal(t, []string{"old-token", view.AccessToken}, persisted)
		assert.Len(t, view.Comments, 1)
		mRepo.AssertExpectations(t)
	})

	t.Run("tokens are not deduplicated across resolves", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")

		// The same document pointer stands in for persisted state across resolves.
		doc := &model.Document{ID: "doc-1", OwnerID: "owner-1"}
		mRepo.On("FindByIDForUser", ctx, "doc-1", "owner-1").Return(doc, nil)
		mRepo.On("ListComments", ctx, "doc-1").Return([]model.Comment{}, nil)
		mRepo.On("ReplaceAccessTokens", ctx, "doc-1", mock.Anything).Return(nil)

		v1, err := svc.GetForViewer(ctx, "doc-1", "owner-1")
		assert.NoError(t, err)
		v2, err := svc.GetForViewer(ctx, "doc-1", "owner-1")
		assert.NoError(t, err)

		assert.NotEqual(t, v1.AccessToken, v2.AccessToken)
		assert.Equal(t, []string{v1.AccessToken, v2.AccessToken}, doc.AccessTokens)
	})

	t.Run("stranger gets not found, not forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")

		mRepo.On("FindByIDForUser", ctx, "doc-1", "stranger").Return(nil, sql.ErrNoRows)

		_, err := svc.GetForViewer(ctx, "doc-1", "stranger")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		svc := NewAccessService(new(repoMocks.MockDocumentRepository), "")
		_, err := svc.GetForViewer(ctx, "doc-1", "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestAccessService_GetByShareToken(t *testing.T) {
	ctx := context.Background()

	sharedDoc := func() *model.Document {
		return &model.Document{
			ID:            "doc-1",
			OwnerID:       "owner-1",
			SharedWith:    []string{"collab-1"},
			InvitedEmails: []string{"invited@example.com"},
		}
	}

	setupResolve := func(mRepo *repoMocks.MockDocumentRepository) {
		mRepo.On("ListComments", ctx, "doc-1").Return([]model.Comment{}, nil)
		mRepo.On("ReplaceAccessTokens", ctx, "doc-1", mock.Anything).Return(nil)
	}

	tests := []struct {
		name    string
		email   string
		userID  string
		wantErr error
	}{
		{name: "no email grants access unconditionally"},
		{name: "invited email grants access", email: "invited@example.com"},
		{name: "uninvited email with owner credential", email: "other@example.com", userID: "owner-1"},
		{name: "uninvited email with shared credential", email: "other@example.com", userID: "collab-1"},
		{name: "uninvited email anonymous", email: "other@example.com", wantErr: ErrForbidden},
		{name: "uninvited email with stranger credential", email: "other@example.com", userID: "stranger", wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewAccessService(mRepo, "")

			mRepo.On("FindByShareToken", ctx, "share-tok").Return(sharedDoc(), nil)
			if tt.wantErr == nil {
				setupResolve(mRepo)
			}

			view, err := svc.GetByShareToken(ctx, "share-tok", tt.email, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, view)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, view.AccessToken)
			}
			mRepo.AssertExpectations(t)
		})
	}

	t.Run("unknown token", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")
		mRepo.On("FindByShareToken", ctx, "bogus").Return(nil, sql.ErrNoRows)

		_, err := svc.GetByShareToken(ctx, "bogus", "", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccessService_MintShareToken(t *testing.T) {
	ctx := context.Background()

	t.Run("always overwrites the previous token", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "https://app.example.com")

		mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
			Return(&model.Document{ID: "doc-1", OwnerID: "owner-1", ShareToken: "existing"}, nil)

		var minted []string
		mRepo.On("SetShareToken", ctx, "doc-1", mock.MatchedBy(func(tok string) bool {
			minted = append(minted, tok)
			return len(tok) == 64 // 32 random bytes hex-encoded
		})).Return(nil).Twice()

		link1, err := svc.MintShareToken(ctx, "doc-1", "owner-1")
		assert.NoError(t, err)
		link2, err := svc.MintShareToken(ctx, "doc-1", "owner-1")
		assert.NoError(t, err)

		assert.NotEqual(t, link1, link2)
		assert.NotEqual(t, minted[0], minted[1])
		assert.True(t, strings.HasPrefix(link1, "https://app.example.com/shared/"))
		mRepo.AssertExpectations(t)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")
		mRepo.On("FindOwned", ctx, "doc-1", "intruder").Return(nil, sql.ErrNoRows)

		_, err := svc.MintShareToken(ctx, "doc-1", "intruder")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccessService_ShareWithUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		target     string
		doc        *model.Document
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name:   "happy path",
			target: "collab-2",
			doc:    &model.Document{ID: "doc-1", OwnerID: "owner-1", SharedWith: []string{"collab-1"}},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("AddSharedUser", ctx, "doc-1", "collab-2").Return(nil)
			},
		},
		{
			name:    "already shared",
			target:  "collab-1",
			doc:     &model.Document{ID: "doc-1", OwnerID: "owner-1", SharedWith: []string{"collab-1"}},
			wantErr: ErrAlreadyShared,
		},
		{
			name:    "owner is never enumerated",
			target:  "owner-1",
			doc:     &model.Document{ID: "doc-1", OwnerID: "owner-1"},
			wantErr: ErrAlreadyShared,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewAccessService(mRepo, "")

			mRepo.On("FindOwned", ctx, "doc-1", "owner-1").Return(tt.doc, nil)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo)
			}

			doc, err := svc.ShareWithUser(ctx, "doc-1", "owner-1", tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, doc.SharedWith, tt.target)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestAccessService_InviteEmails(t *testing.T) {
	ctx := context.Background()

	t.Run("reuses an existing share token", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "https://app.example.com")

		mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
			Return(&model.Document{ID: "doc-1", OwnerID: "owner-1", InvitedEmails: []string{"old@example.com"}}, nil)
		// The repository keeps whatever token already exists.
		mRepo.On("EnsureShareToken", ctx, "doc-1", mock.Anything).Return("existing-token", nil)
		mRepo.On("ReplaceInvitedEmails", ctx, "doc-1", []string{"old@example.com", "new@example.com"}).Return(nil)

		res, err := svc.InviteEmails(ctx, "doc-1", "owner-1", []string{"new@example.com", " ", "old@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "https://app.example.com/shared/existing-token", res.Link)
		assert.Equal(t, []string{"old@example.com", "new@example.com"}, res.InvitedEmails)
		mRepo.AssertExpectations(t)
	})

	t.Run("no write when all emails already invited", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")

		mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
			Return(&model.Document{ID: "doc-1", OwnerID: "owner-1", InvitedEmails: []string{"a@example.com"}}, nil)
		mRepo.On("EnsureShareToken", ctx, "doc-1", mock.Anything).Return("tok", nil)

		res, err := svc.InviteEmails(ctx, "doc-1", "owner-1", []string{"a@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"a@example.com"}, res.InvitedEmails)
		mRepo.AssertNotCalled(t, "ReplaceInvitedEmails", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank emails rejected", func(t *testing.T) {
		svc := NewAccessService(new(repoMocks.MockDocumentRepository), "")
		_, err := svc.InviteEmails(ctx, "doc-1", "owner-1", []string{"", "   "})
		assert.ErrorIs(t, err, ErrEmailsRequired)
	})
}

func TestAccessService_RevokeInvite(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockDocumentRepository)
	svc := NewAccessService(mRepo, "")

	mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
		Return(&model.Document{ID: "doc-1", OwnerID: "owner-1", InvitedEmails: []string{"a@example.com", "b@example.com"}}, nil)
	mRepo.On("ReplaceInvitedEmails", ctx, "doc-1", []string{"b@example.com"}).Return(nil)

	remaining, err := svc.RevokeInvite(ctx, "doc-1", "owner-1", "a@example.com")
	assert.NoError(t, err)
	assert.Equal(t, []string{"b@example.com"}, remaining)
	mRepo.AssertExpectations(t)
}

func TestAccessService_AuthorizeProxy(t *testing.T) {
	ctx := context.Background()

	doc := func() *model.Document {
		return &model.Document{
			ID:           "doc-1",
			OwnerID:      "owner-1",
			SharedWith:   []string{"collab-1"},
			AccessTokens: []string{"tok-a", "tok-b"},
			BlobRef:      "uuid.pdf",
		}
	}

	tests := []struct {
		name        string
		userID      string
		accessToken string
		wantErr     error
	}{
		{name: "owner credential alone", userID: "owner-1"},
		{name: "shared credential alone", userID: "collab-1"},
		{name: "valid token alone", accessToken: "tok-b"},
		{name: "stranger with valid token", userID: "stranger", accessToken: "tok-a"},
		{name: "owner with bogus token", userID: "owner-1", accessToken: "bogus"},
		{name: "anonymous without token", wantErr: ErrForbidden},
		{name: "stranger with bogus token", userID: "stranger", accessToken: "bogus", wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewAccessService(mRepo, "")
			mRepo.On("FindByBlobRef", ctx, "uuid.pdf").Return(doc(), nil)

			got, err := svc.AuthorizeProxy(ctx, "uuid.pdf", tt.userID, tt.accessToken)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "doc-1", got.ID)
			}
		})
	}

	t.Run("unknown blob ref", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewAccessService(mRepo, "")
		mRepo.On("FindByBlobRef", ctx, "missing.pdf").Return(nil, sql.ErrNoRows)

		_, err := svc.AuthorizeProxy(ctx, "missing.pdf", "owner-1", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAppendAccessToken(t *testing.T) {
	t.Run("grows until the cap", func(t *testing.T) {
		var tokens []string
		for i := 1; i <= maxAccessTokens; i++ {
			tokens = appendAccessToken(tokens, fmt.Sprintf("tok-%d", i))
		}
		assert.Len(t, tokens, maxAccessTokens)
		assert.Equal(t, "tok-1", tokens[0])
		assert.Equal(t, "tok-100", tokens[99])
	})

	t.Run("trims to the newest fifty once past the cap", func(t *testing.T) {
		var tokens []string
		for i := 1; i <= maxAccessTokens+1; i++ {
			tokens = appendAccessToken(tokens, fmt.Sprintf("tok-%d", i))
		}
		assert.Len(t, tokens, keepAccessTokens)
		assert.Equal(t, "tok-52", tokens[0])
		assert.Equal(t, "tok-101", tokens[len(tokens)-1])
		assert.NotContains(t, tokens, "tok-1")
		assert.NotContains(t, tokens, "tok-51")
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		in := []string{"a", "b"}
		out := appendAccessToken(in, "c")
		assert.Equal(t, []string{"a", "b"}, in)
		assert.Equal(t, []string{"a", "b", "c"}, out)
	})
}
