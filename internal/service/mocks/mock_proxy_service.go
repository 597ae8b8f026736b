package mocks

import (
	"context"

	"pdfcollab/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockProxyService struct {
	mock.Mock
}

func (m *MockProxyService) Fetch(ctx context.Context, blobRef, userID, accessToken string) (*service.ProxyResult, error) {
	args := m.Called(ctx, blobRef, userID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProxyResult), args.Error(1)
}
