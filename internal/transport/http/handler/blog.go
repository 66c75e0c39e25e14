package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/app"
	"gopherblog/internal/model"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/response"
)

type BlogHandler struct {
	blogService *app.BlogService
}

type CreateBlogRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Content    string   `json:"content" binding:"required"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published archived"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
}

type UpdateBlogRequest struct {
	Title      *string   `json:"title" binding:"omitempty,min=3,max=200"`
	Content    *string   `json:"content"`
	Category   *string   `json:"category"`
	Tags       *[]string `json:"tags"`
	CoverImage *string   `json:"coverImage"`
	Status     *string   `json:"status" binding:"omitempty,oneof=draft published archived"`
	Slug       *string   `json:"slug"`
	Excerpt    *string   `json:"excerpt"`
}

var numericID = regexp.MustCompile(`^\d+$`)

func NewBlogHandler(blogService *app.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

func (h *BlogHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.blogService.List(app.ListBlogsInput{
		Page:     page,
		Limit:    limit,
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		serviceError(c, err, "failed to fetch blogs")
		return
	}
	respondBlogPage(c, result)
}

// Get resolves the path identifier before touching the service: an
// all-digits identifier is a blog id, anything else a slug.
func (h *BlogHandler) Get(c *gin.Context) {
	identifier := c.Param("identifier")

	var (
		blog *model.Blog
		err  error
	)
	if numericID.MatchString(identifier) {
		id, parseErr := strconv.ParseUint(identifier, 10, 64)
		if parseErr != nil {
			response.Error(c, http.StatusBadRequest, "invalid blog identifier")
			return
		}
		blog, err = h.blogService.GetByID(c.Request.Context(), uint(id))
	} else {
		blog, err = h.blogService.GetBySlug(c.Request.Context(), identifier)
	}
	if err != nil {
		serviceError(c, err, "failed to fetch blog")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"blog": blog})
}

func (h *BlogHandler) Create(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "title and content are required")
		return
	}

	blog, err := h.blogService.Create(c.Request.Context(), userID, app.CreateBlogInput{
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		Tags:       req.Tags,
		CoverImage: req.CoverImage,
		Status:     req.Status,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
	})
	if err != nil {
		serviceError(c, err, "failed to create blog")
		return
	}

	response.OK(c, http.StatusCreated, "Blog created successfully", gin.H{"blog": blog})
}

func (h *BlogHandler) Update(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	id, err := paramUint(c, "identifier")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid blog id")
		return
	}

	var req UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	blog, err := h.blogService.Update(c.Request.Context(), id, userID, role, app.UpdateBlogInput{
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		Tags:       req.Tags,
		CoverImage: req.CoverImage,
		Status:     req.Status,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
	})
	if err != nil {
		serviceError(c, err, "failed to update blog")
		return
	}

	response.OK(c, http.StatusOK, "Blog updated successfully", gin.H{"blog": blog})
}

func (h *BlogHandler) Delete(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	id, err := paramUint(c, "identifier")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid blog id")
		return
	}

	if err := h.blogService.Delete(c.Request.Context(), id, userID, role); err != nil {
		serviceError(c, err, "failed to delete blog")
		return
	}

	response.OK(c, http.StatusOK, "Blog deleted successfully", nil)
}

func (h *BlogHandler) ListByCategory(c *gin.Context) {
	result, err := h.blogService.ListByCategory(
		c.Param("category"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 10),
	)
	if err != nil {
		serviceError(c, err, "failed to fetch blogs by category")
		return
	}
	respondBlogPage(c, result)
}

func (h *BlogHandler) ListByAuthor(c *gin.Context) {
	authorID, err := paramUint(c, "authorId")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid author id")
		return
	}

	result, err := h.blogService.ListByAuthor(authorID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err, "failed to fetch blogs by author")
		return
	}
	respondBlogPage(c, result)
}

func (h *BlogHandler) Search(c *gin.Context) {
	result, err := h.blogService.Search(
		c.Query("query"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 10),
	)
	if err != nil {
		serviceError(c, err, "failed to search blogs")
		return
	}
	respondBlogPage(c, result)
}

func (h *BlogHandler) ListCategories(c *gin.Context) {
	categories, err := h.blogService.ListCategories(c.Request.Context())
	if err != nil {
		serviceError(c, err, "failed to fetch categories")
		return
	}
	response.OK(c, http.StatusOK, "", gin.H{"categories": categories})
}

func (h *BlogHandler) ListFeatured(c *gin.Context) {
	blogs, err := h.blogService.ListFeatured(c.Request.Context())
	if err != nil {
		serviceError(c, err, "failed to fetch featured blogs")
		return
	}
	response.OK(c, http.StatusOK, "", gin.H{"blogs": blogs})
}

func respondBlogPage(c *gin.Context, page *app.BlogPage) {
	response.OK(c, http.StatusOK, "", gin.H{
		"count":       page.Count,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"blogs":       page.Blogs,
	})
}

// queryInt falls back to def when the parameter is absent or non-numeric.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func paramUint(c *gin.Context, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}
