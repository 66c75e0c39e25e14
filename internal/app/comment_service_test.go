package app

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
)

func newCommentService(db *gorm.DB) *CommentService {
	return NewCommentService(repository.NewCommentRepository(db), repository.NewBlogRepository(db), nil)
}

func TestCommentCreate(t *testing.T) {
	db := setupTestDB(t, t.Name())
	blogSvc := newBlogService(db)
	commentSvc := newCommentService(db)
	author := seedUser(t, db, "alice", model.RoleUser)
	commenter := seedUser(t, db, "bob", model.RoleUser)
	blog := seedBlog(t, blogSvc, author.ID, CreateBlogInput{Title: "Discussed post", Content: "body"})

	ctx := context.Background()

	if _, err := commentSvc.Create(ctx, blog.ID, commenter.ID, "   "); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty content got %v", err)
	}
	if _, err := commentSvc.Create(ctx, 999, commenter.ID, "hello"); err != ErrBlogNotFound {
		t.Fatalf("expected ErrBlogNotFound got %v", err)
	}

	comment, err := commentSvc.Create(ctx, blog.ID, commenter.ID, "great read")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if comment.BlogID != blog.ID || comment.AuthorID != commenter.ID {
		t.Fatal("comment references wrong blog or author")
	}

	comments, err := commentSvc.ListByBlog(blog.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "great read" {
		t.Fatalf("expected the created comment, got %d", len(comments))
	}
	if comments[0].Author == nil || comments[0].Author.Username != "bob" {
		t.Fatal("expected comment author populated")
	}
}

func TestCommentDeleteOwnership(t *testing.T) {
	db := setupTestDB(t, t.Name())
	blogSvc := newBlogService(db)
	commentSvc := newCommentService(db)
	author := seedUser(t, db, "alice", model.RoleUser)
	commenter := seedUser(t, db, "bob", model.RoleUser)
	admin := seedUser(t, db, "root", model.RoleAdmin)
	blog := seedBlog(t, blogSvc, author.ID, CreateBlogInput{Title: "Discussed post", Content: "body"})

	ctx := context.Background()
	comment, err := commentSvc.Create(ctx, blog.ID, commenter.ID, "first")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// The blog's author does not own the comment.
	if err := commentSvc.Delete(comment.ID, author.ID, author.Role); err != ErrNotCommentOwner {
		t.Fatalf("expected ErrNotCommentOwner got %v", err)
	}
	if err := commentSvc.Delete(comment.ID, commenter.ID, commenter.Role); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := commentSvc.Delete(comment.ID, admin.ID, admin.Role); err != ErrCommentNotFound {
		t.Fatalf("expected ErrCommentNotFound after delete got %v", err)
	}

	second, err := commentSvc.Create(ctx, blog.ID, commenter.ID, "second")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := commentSvc.Delete(second.ID, admin.ID, admin.Role); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
