package mocks

import (
	"context"

	"pdfcollab/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) AddComment(ctx context.Context, documentID, userID, text string) (*model.Document, error) {
	args := m.Called(ctx, documentID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCommentService) AddReply(ctx context.Context, documentID, commentID, userID, text string) (*model.Document, error) {
	args := m.Called(ctx, documentID, commentID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCommentService) AddNestedReply(ctx context.Context, documentID, commentID, replyID, userID, text string) (*model.Document, error) {
	args := m.Called(ctx, documentID, commentID, replyID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCommentService) AddSharedComment(ctx context.Context, shareToken, guestName, text string) (*model.Document, error) {
	args := m.Called(ctx, shareToken, guestName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCommentService) AddSharedReply(ctx context.Context, shareToken, commentID, guestName, text string) (*model.Document, error) {
	args := m.Called(ctx, shareToken, commentID, guestName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCommentService) AddSharedNestedReply(ctx context.Context, shareToken, commentID, replyID, guestName, text string) (*model.Document, error) {
	args := m.Called(ctx, shareToken, commentID, replyID, guestName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
