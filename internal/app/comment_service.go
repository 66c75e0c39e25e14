package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not authorized to delete this comment")
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	blogRepo    *repository.BlogRepository
	publisher   ActivityPublisher
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	blogRepo *repository.BlogRepository,
	publisher ActivityPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		blogRepo:    blogRepo,
		publisher:   publisher,
	}
}

// Create attaches a comment to an existing blog. Orphan comments cannot be
// created; the blog is checked first.
func (s *CommentService) Create(ctx context.Context, blogID, authorID uint, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	blog, err := s.blogRepo.GetByID(blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}

	comment := &model.Comment{
		Content:  content,
		AuthorID: authorID,
		BlogID:   blogID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		activity := model.Activity{
			Type:        model.ActivityCommentCreated,
			ActorID:     authorID,
			SubjectKind: "comment",
			SubjectID:   comment.ID,
			CreatedAt:   comment.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, activity); err != nil {
			log.Printf("publish activity %s failed: %v", activity.Type, err)
		}
	}
	return comment, nil
}

func (s *CommentService) ListByBlog(blogID uint) ([]model.Comment, error) {
	blog, err := s.blogRepo.GetByID(blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	return s.commentRepo.ListByBlogID(blogID)
}

// Delete removes a comment when the requester wrote it or is an admin.
func (s *CommentService) Delete(id, requesterID uint, requesterRole string) error {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.AuthorID != requesterID && requesterRole != model.RoleAdmin {
		return ErrNotCommentOwner
	}
	return s.commentRepo.Delete(id)
}
