package mocks

import (
	"context"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForUser(ctx context.Context, id, userID string) (*model.Document, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindOwned(ctx context.Context, id, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByShareToken(ctx context.Context, token string) (*model.Document, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByBlobRef(ctx context.Context, blobRef string) (*model.Document, error) {
	args := m.Called(ctx, blobRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) ReplaceAccessTokens(ctx context.Context, id string, tokens []string) error {
	args := m.Called(ctx, id, tokens)
	return args.Error(0)
}

func (m *MockDocumentRepository) SetShareToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockDocumentRepository) EnsureShareToken(ctx context.Context, id, candidate string) (string, error) {
	args := m.Called(ctx, id, candidate)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) AddSharedUser(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockDocumentRepository) ReplaceInvitedEmails(ctx context.Context, id string, emails []string) error {
	args := m.Called(ctx, id, emails)
	return args.Error(0)
}

func (m *MockDocumentRepository) InsertComment(ctx context.Context, cm *model.Comment) error {
	args := m.Called(ctx, cm)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindCommentByID(ctx context.Context, documentID, commentID string) (*model.Comment, error) {
	args := m.Called(ctx, documentID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockDocumentRepository) ListComments(ctx context.Context, documentID string) ([]model.Comment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}
