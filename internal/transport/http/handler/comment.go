package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/app"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/response"
)

type CommentHandler struct {
	commentService *app.CommentService
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func NewCommentHandler(commentService *app.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	blogID, err := paramUint(c, "identifier")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid blog id")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "comment content is required")
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), blogID, userID, req.Content)
	if err != nil {
		serviceError(c, err, "failed to create comment")
		return
	}

	response.OK(c, http.StatusCreated, "Comment added successfully", gin.H{"comment": comment})
}

func (h *CommentHandler) ListByBlog(c *gin.Context) {
	blogID, err := paramUint(c, "identifier")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid blog id")
		return
	}

	comments, err := h.commentService.ListByBlog(blogID)
	if err != nil {
		serviceError(c, err, "failed to fetch comments")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"comments": comments})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	id, err := paramUint(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(id, userID, role); err != nil {
		serviceError(c, err, "failed to delete comment")
		return
	}

	response.OK(c, http.StatusOK, "Comment deleted successfully", nil)
}
