package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"
	repoMocks "pdfcollab/internal/repository/mocks"
	"pdfcollab/internal/storage"
	storeMocks "pdfcollab/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const pdfPayload = "%PDF-1.7\nhello"

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		title            string
		size             int64
		ownerID          string
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "report.pdf",
			title:            "Quarterly Report",
			size:             int64(len(pdfPayload)),
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasSuffix(key, ".pdf") && !strings.Contains(key, "/")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "application/pdf" &&
						opt.Metadata["original-filename"] == "report.pdf"
				})).Return(storage.ObjectInfo{
					Key:         "uuid.pdf",
					Size:        int64(len(pdfPayload)),
					ContentType: "application/pdf",
				}, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Title == "Quarterly Report" &&
						doc.Filename == "report.pdf" &&
						doc.BlobRef == "uuid.pdf" &&
						doc.OwnerID == "owner-1" &&
						doc.ContentType == "application/pdf"
				})).Return(&model.Document{ID: "gen-id"}, nil)

				return strings.NewReader(pdfPayload)
			},
			wantErr: nil,
		},
		{
			name:             "title defaults to filename",
			originalFilename: "notes.pdf",
			size:             int64(len(pdfPayload)),
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uuid.pdf", Size: int64(len(pdfPayload))}, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Title == "notes.pdf" && doc.DisplayName == "notes.pdf"
				})).Return(&model.Document{ID: "gen-id"}, nil)
				return strings.NewReader(pdfPayload)
			},
			wantErr: nil,
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "report.pdf",
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "validation error - missing owner",
			originalFilename: "report.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return strings.NewReader(pdfPayload)
			},
			wantErr: ErrIDRequired,
		},
		{
			name:             "rejects oversized upload",
			originalFilename: "big.pdf",
			size:             (10 << 20) + 1,
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return strings.NewReader(pdfPayload)
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name:             "rejects payload without pdf signature",
			originalFilename: "fake.pdf",
			size:             11,
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return strings.NewReader("hello world")
			},
			wantErr: ErrNotPDF,
		},
		{
			name:             "rejects payload shorter than signature",
			originalFilename: "tiny.pdf",
			size:             3,
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				return strings.NewReader("%PD")
			},
			wantErr: ErrNotPDF,
		},
		{
			name:             "storage error",
			originalFilename: "report.pdf",
			size:             int64(len(pdfPayload)),
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return strings.NewReader(pdfPayload)
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "report.pdf",
			size:             int64(len(pdfPayload)),
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return strings.NewReader(pdfPayload)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "report.pdf",
			size:             int64(len(pdfPayload)),
			ownerID:          "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) io.Reader {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("rollback fail"))
				return strings.NewReader(pdfPayload)
			},
			wantErrMsg: "rollback delete failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, mRepo, 10<<20)

			r := tt.setupMocks(mStore, mRepo)

			doc, err := svc.Upload(ctx, r, tt.originalFilename, tt.title, "application/octet-stream", tt.size, tt.ownerID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path with defaults", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(new(storeMocks.MockStorage), mRepo, 10<<20)

		mRepo.On("ListForUser", ctx, "user-1", repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Document]{
				Items: []model.Document{{ID: "d1"}, {ID: "d2"}},
				Total: 2,
			}, nil)

		res, err := svc.List(ctx, "user-1", 0, -5)
		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		mRepo.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		svc := NewDocumentService(new(storeMocks.MockStorage), new(repoMocks.MockDocumentRepository), 10<<20)
		_, err := svc.List(ctx, "", 10, 0)
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(new(storeMocks.MockStorage), mRepo, 10<<20)

		mRepo.On("ListForUser", ctx, "user-1", mock.Anything).
			Return(nil, errors.New("db fail"))

		_, err := svc.List(ctx, "user-1", 10, 0)
		assert.ErrorContains(t, err, "db fail")
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		ownerID    string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:    "happy path",
			id:      "doc-1",
			ownerID: "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
					Return(&model.Document{ID: "doc-1", BlobRef: "uuid.pdf"}, nil)
				mStore.On("Delete", ctx, "uuid.pdf").Return(nil)
				mRepo.On("Delete", ctx, "doc-1").Return(nil)
			},
		},
		{
			name:       "missing id",
			ownerID:    "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:    "not owned reports not found",
			id:      "doc-1",
			ownerID: "intruder",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindOwned", ctx, "doc-1", "intruder").
					Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "storage delete failure keeps row",
			id:      "doc-1",
			ownerID: "owner-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindOwned", ctx, "doc-1", "owner-1").
					Return(&model.Document{ID: "doc-1", BlobRef: "uuid.pdf"}, nil)
				mStore.On("Delete", ctx, "uuid.pdf").Return(errors.New("storage fail"))
			},
			wantErrMsg: "delete storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, mRepo, 10<<20)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id, tt.ownerID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
