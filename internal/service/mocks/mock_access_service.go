package mocks

import (
	"context"

	"pdfcollab/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) GetForViewer(ctx context.Context, documentID, userID string) (*model.DocumentView, error) {
	args := m.Called(ctx, documentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentView), args.Error(1)
}

func (m *MockAccessService) GetByShareToken(ctx context.Context, shareToken, email, userID string) (*model.DocumentView, error) {
	args := m.Called(ctx, shareToken, email, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentView), args.Error(1)
}

func (m *MockAccessService) MintShareToken(ctx context.Context, documentID, ownerID string) (string, error) {
	args := m.Called(ctx, documentID, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockAccessService) ShareWithUser(ctx context.Context, documentID, ownerID, targetUserID string) (*model.Document, error) {
	args := m.Called(ctx, documentID, ownerID, targetUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockAccessService) InviteEmails(ctx context.Context, documentID, ownerID string, emails []string) (*model.InviteResult, error) {
	args := m.Called(ctx, documentID, ownerID, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InviteResult), args.Error(1)
}

func (m *MockAccessService) InvitedUsers(ctx context.Context, documentID, ownerID string) (*model.InvitedUsers, error) {
	args := m.Called(ctx, documentID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InvitedUsers), args.Error(1)
}

func (m *MockAccessService) RevokeInvite(ctx context.Context, documentID, ownerID, email string) ([]string, error) {
	args := m.Called(ctx, documentID, ownerID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAccessService) AuthorizeProxy(ctx context.Context, blobRef, userID, accessToken string) (*model.Document, error) {
	args := m.Called(ctx, blobRef, userID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
