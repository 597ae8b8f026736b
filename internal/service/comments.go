package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfcollab/internal/model"
	"pdfcollab/internal/repository"
)

// CommentService appends comments and replies to a document's comment tree.
// The tree is append-only (no edit, no delete) and exactly three tiers deep:
// comment, reply, nested reply. A failed ancestor lookup yields ErrNotFound
// and writes nothing.
//
// Authenticated variants require the caller to be the owner or a shared user;
// shared variants require only share-token knowledge and record a guest author.
type CommentService interface {
	AddComment(ctx context.Context, documentID, userID, text string) (*model.Document, error)
	AddReply(ctx context.Context, documentID, commentID, userID, text string) (*model.Document, error)
	AddNestedReply(ctx context.Context, documentID, commentID, replyID, userID, text string) (*model.Document, error)

	AddSharedComment(ctx context.Context, shareToken, guestName, text string) (*model.Document, error)
	AddSharedReply(ctx context.Context, shareToken, commentID, guestName, text string) (*model.Document, error)
	AddSharedNestedReply(ctx context.Context, shareToken, commentID, replyID, guestName, text string) (*model.Document, error)
}

type commentService struct {
	repo repository.DocumentRepository
}

// NewCommentService constructs a new CommentService.
func NewCommentService(repo repository.DocumentRepository) CommentService {
	return &commentService{repo: repo}
}

func (s *commentService) AddComment(ctx context.Context, documentID, userID, text string) (*model.Document, error) {
	doc, err := s.findForUser(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, nil, model.RegisteredAuthor(userID), text)
}

func (s *commentService) AddReply(ctx context.Context, documentID, commentID, userID, text string) (*model.Document, error) {
	doc, err := s.findForUser(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	parent, err := s.findParent(ctx, doc.ID, commentID, 0)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, parent, model.RegisteredAuthor(userID), text)
}

func (s *commentService) AddNestedReply(ctx context.Context, documentID, commentID, replyID, userID, text string) (*model.Document, error) {
	doc, err := s.findForUser(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	parent, err := s.findReply(ctx, doc.ID, commentID, replyID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, parent, model.RegisteredAuthor(userID), text)
}

func (s *commentService) AddSharedComment(ctx context.Context, shareToken, guestName, text string) (*model.Document, error) {
	doc, err := s.findByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	author, err := guestAuthor(guestName)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, nil, author, text)
}

func (s *commentService) AddSharedReply(ctx context.Context, shareToken, commentID, guestName, text string) (*model.Document, error) {
	doc, err := s.findByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	parent, err := s.findParent(ctx, doc.ID, commentID, 0)
	if err != nil {
		return nil, err
	}
	author, err := guestAuthor(guestName)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, parent, author, text)
}

func (s *commentService) AddSharedNestedReply(ctx context.Context, shareToken, commentID, replyID, guestName, text string) (*model.Document, error) {
	doc, err := s.findByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	parent, err := s.findReply(ctx, doc.ID, commentID, replyID)
	if err != nil {
		return nil, err
	}
	author, err := guestAuthor(guestName)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, doc, parent, author, text)
}

func (s *commentService) findForUser(ctx context.Context, documentID, userID string) (*model.Document, error) {
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
	return doc, nil
}

func (s *commentService) findByShareToken(ctx context.Context, shareToken string) (*model.Document, error) {
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
	return doc, nil
}

// findParent resolves the ancestor a reply attaches to. A row found at the
// wrong tier is invalid addressing and reported as ErrNotFound, the same as a
// missing row.
func (s *commentService) findParent(ctx context.Context, documentID, commentID string, wantDepth int) (*model.Comment, error) {
	if commentID == "" {
		return nil, ErrNotFound
	}
	cm, err := s.repo.FindCommentByID(ctx, documentID, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cm.Depth != wantDepth {
		return nil, ErrNotFound
	}
	return cm, nil
}

// findReply resolves a second-tier reply, requiring both ancestor lookups to
// succeed: the top-level comment and the reply nested under it.
func (s *commentService) findReply(ctx context.Context, documentID, commentID, replyID string) (*model.Comment, error) {
	if _, err := s.findParent(ctx, documentID, commentID, 0); err != nil {
		return nil, err
	}
	reply, err := s.findParent(ctx, documentID, replyID, 1)
	if err != nil {
		return nil, err
	}
	if reply.ParentID != commentID {
		return nil, ErrNotFound
	}
	return reply, nil
}

// append inserts a single comment row and returns the document with its
// reloaded tree. The insert is atomic: concurrent appends cannot lose each other.
func (s *commentService) append(ctx context.Context, doc *model.Document, parent *model.Comment, author model.Author, text string) (*model.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	cm := &model.Comment{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Text:       text,
		Author:     author,
		CreatedAt:  time.Now().UTC(),
	}
	if parent != nil {
		cm.ParentID = parent.ID
		cm.Depth = parent.Depth + 1
	}
	// Unreachable through the exposed operations; guards the tier cap anyway.
	if cm.Depth > model.MaxCommentDepth {
		return nil, ErrNotFound
	}

	if err := s.repo.InsertComment(ctx, cm); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	comments, err := s.repo.ListComments(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	doc.Comments = comments
	return doc, nil
}

// guestAuthor fabricates the inline author record for an unregistered
// commenter. The synthetic email is timestamp-derived, unique per call, and
// never validated or delivered.
func guestAuthor(name string) (model.Author, error) {
	if strings.TrimSpace(name) == "" {
		return model.Author{}, ErrGuestNameRequired
	}
	email := fmt.Sprintf("guest-%d@example.com", time.Now().UnixNano())
	return model.GuestAuthor(name, email), nil
}
