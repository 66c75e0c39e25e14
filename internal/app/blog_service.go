package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
)

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrNotOwner     = errors.New("not authorized to modify this blog")
	ErrSlugTaken    = errors.New("a blog with this slug already exists")
	ErrEmptyQuery   = errors.New("search query is required")
)

const (
	defaultPage   = 1
	defaultLimit  = 10
	maxLimit      = 100
	excerptLength = 200
	featuredCount = 5
)

// ActivityPublisher forwards content-mutation events to the broker.
// Publishing is best-effort; failures are logged and never fail the request.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity model.Activity) error
}

// ListCache is an advisory read-through cache for the hot list endpoints.
type ListCache interface {
	GetFeatured(ctx context.Context) ([]model.Blog, bool, error)
	SetFeatured(ctx context.Context, blogs []model.Blog) error
	GetCategories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
	Invalidate(ctx context.Context) error
}

type BlogService struct {
	blogRepo  *repository.BlogRepository
	userRepo  *repository.UserRepository
	cache     ListCache
	publisher ActivityPublisher
	now       func() time.Time
}

type CreateBlogInput struct {
	Title      string
	Content    string
	Category   string
	Tags       []string
	CoverImage string
	Status     string
	Slug       string
	Excerpt    string
}

// UpdateBlogInput carries partial updates; nil fields keep prior values.
type UpdateBlogInput struct {
	Title      *string
	Content    *string
	Category   *string
	Tags       *[]string
	CoverImage *string
	Status     *string
	Slug       *string
	Excerpt    *string
}

type ListBlogsInput struct {
	Page     int
	Limit    int
	Category string
	Status   string
}

type BlogPage struct {
	Blogs       []model.Blog
	Count       int64
	TotalPages  int
	CurrentPage int
}

func NewBlogService(
	blogRepo *repository.BlogRepository,
	userRepo *repository.UserRepository,
	cache ListCache,
	publisher ActivityPublisher,
) *BlogService {
	return &BlogService{
		blogRepo:  blogRepo,
		userRepo:  userRepo,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *BlogService) List(input ListBlogsInput) (*BlogPage, error) {
	page, limit := normalizePage(input.Page, input.Limit)
	status := input.Status
	if status == "" {
		status = model.StatusPublished
	}

	blogs, count, err := s.blogRepo.List(repository.BlogFilter{
		Status:   status,
		Category: input.Category,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return newBlogPage(blogs, count, page, limit), nil
}

func (s *BlogService) ListByCategory(category string, page, limit int) (*BlogPage, error) {
	return s.List(ListBlogsInput{Page: page, Limit: limit, Category: category, Status: model.StatusPublished})
}

func (s *BlogService) ListByAuthor(authorID uint, page, limit int) (*BlogPage, error) {
	page, limit = normalizePage(page, limit)
	blogs, count, err := s.blogRepo.List(repository.BlogFilter{
		Status:   model.StatusPublished,
		AuthorID: authorID,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return newBlogPage(blogs, count, page, limit), nil
}

// GetByID returns the blog with author and comments populated, bumping the
// view counter as a side effect.
func (s *BlogService) GetByID(ctx context.Context, id uint) (*model.Blog, error) {
	return s.getAndCount(ctx, func() (*model.Blog, error) {
		return s.blogRepo.GetByID(id)
	})
}

// GetBySlug is the slug-keyed twin of GetByID.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	return s.getAndCount(ctx, func() (*model.Blog, error) {
		return s.blogRepo.GetBySlug(slug)
	})
}

func (s *BlogService) getAndCount(ctx context.Context, fetch func() (*model.Blog, error)) (*model.Blog, error) {
	blog, err := fetch()
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}

	if err := s.blogRepo.IncrementViewCount(blog.ID); err != nil {
		return nil, err
	}
	blog.ViewCount++
	return blog, nil
}

func (s *BlogService) Create(ctx context.Context, authorID uint, input CreateBlogInput) (*model.Blog, error) {
	title := strings.TrimSpace(input.Title)
	content := input.Content
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	if len(title) < 3 || len(title) > 200 {
		return nil, ErrInvalidInput
	}

	status := input.Status
	if status == "" {
		status = model.StatusPublished
	}
	if !model.ValidStatus(status) {
		return nil, ErrInvalidInput
	}

	author, err := s.userRepo.GetByID(authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = deriveSlug(title, s.now())
	}
	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = deriveExcerpt(content)
	}

	blog := &model.Blog{
		Title:      title,
		Slug:       slug,
		Content:    content,
		CoverImage: input.CoverImage,
		Excerpt:    excerpt,
		Category:   category,
		Tags:       model.StringList(input.Tags),
		Status:     status,
		AuthorID:   authorID,
	}
	if err := s.blogRepo.Create(blog); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	blog.Author = author

	s.invalidateCache(ctx)
	s.publish(ctx, model.ActivityBlogCreated, authorID, "blog", blog.ID)
	return blog, nil
}

// Update applies the supplied fields after the owner-or-admin check. Excerpt
// is re-derived when content changes without an explicit excerpt; the slug is
// regenerated when the title changes without an explicit slug.
func (s *BlogService) Update(ctx context.Context, id, requesterID uint, requesterRole string, input UpdateBlogInput) (*model.Blog, error) {
	blog, err := s.blogRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	if !canMutate(blog, requesterID, requesterRole) {
		return nil, ErrNotOwner
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 3 || len(title) > 200 {
			return nil, ErrInvalidInput
		}
		if title != blog.Title {
			blog.Title = title
			if input.Slug == nil {
				blog.Slug = deriveSlug(title, s.now())
			}
		}
	}
	if input.Slug != nil && strings.TrimSpace(*input.Slug) != "" {
		blog.Slug = strings.TrimSpace(*input.Slug)
	}
	if input.Content != nil && strings.TrimSpace(*input.Content) != "" {
		blog.Content = *input.Content
		if input.Excerpt == nil {
			blog.Excerpt = deriveExcerpt(blog.Content)
		}
	}
	if input.Excerpt != nil {
		blog.Excerpt = *input.Excerpt
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		blog.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		blog.Tags = model.StringList(*input.Tags)
	}
	if input.CoverImage != nil {
		blog.CoverImage = *input.CoverImage
	}
	if input.Status != nil {
		if !model.ValidStatus(*input.Status) {
			return nil, ErrInvalidInput
		}
		blog.Status = *input.Status
	}

	// Save would try to upsert preloaded associations; persist scalar
	// columns only.
	comments := blog.Comments
	author := blog.Author
	blog.Comments = nil
	blog.Author = nil
	if err := s.blogRepo.Save(blog); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	blog.Comments = comments
	blog.Author = author

	s.invalidateCache(ctx)
	s.publish(ctx, model.ActivityBlogUpdated, requesterID, "blog", blog.ID)
	return blog, nil
}

// Delete removes the blog and all of its comments after the owner-or-admin
// check.
func (s *BlogService) Delete(ctx context.Context, id, requesterID uint, requesterRole string) error {
	blog, err := s.blogRepo.GetByID(id)
	if err != nil {
		return err
	}
	if blog == nil {
		return ErrBlogNotFound
	}
	if !canMutate(blog, requesterID, requesterRole) {
		return ErrNotOwner
	}

	if err := s.blogRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.publish(ctx, model.ActivityBlogDeleted, requesterID, "blog", id)
	return nil
}

func (s *BlogService) Search(query string, page, limit int) (*BlogPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	page, limit = normalizePage(page, limit)
	blogs, count, err := s.blogRepo.Search(query, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return newBlogPage(blogs, count, page, limit), nil
}

func (s *BlogService) ListCategories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if categories, ok, err := s.cache.GetCategories(ctx); err != nil {
			log.Printf("categories cache read failed: %v", err)
		} else if ok {
			return categories, nil
		}
	}

	categories, err := s.blogRepo.DistinctCategories()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			log.Printf("categories cache write failed: %v", err)
		}
	}
	return categories, nil
}

// ListFeatured returns the top published blogs by view count.
func (s *BlogService) ListFeatured(ctx context.Context) ([]model.Blog, error) {
	if s.cache != nil {
		if blogs, ok, err := s.cache.GetFeatured(ctx); err != nil {
			log.Printf("featured cache read failed: %v", err)
		} else if ok {
			return blogs, nil
		}
	}

	blogs, err := s.blogRepo.TopByViews(featuredCount)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetFeatured(ctx, blogs); err != nil {
			log.Printf("featured cache write failed: %v", err)
		}
	}
	return blogs, nil
}

func (s *BlogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("blog cache invalidate failed: %v", err)
	}
}

func (s *BlogService) publish(ctx context.Context, activityType string, actorID uint, subjectKind string, subjectID uint) {
	if s.publisher == nil {
		return
	}
	activity := model.Activity{
		Type:        activityType,
		ActorID:     actorID,
		SubjectKind: subjectKind,
		SubjectID:   subjectID,
		CreatedAt:   s.now(),
	}
	if err := s.publisher.Publish(ctx, activity); err != nil {
		log.Printf("publish activity %s failed: %v", activityType, err)
	}
}

func canMutate(blog *model.Blog, requesterID uint, requesterRole string) bool {
	return blog.AuthorID == requesterID || requesterRole == model.RoleAdmin
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newBlogPage(blogs []model.Blog, count int64, page, limit int) *BlogPage {
	totalPages := int((count + int64(limit) - 1) / int64(limit))
	return &BlogPage{
		Blogs:       blogs,
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}

var (
	nonWordChars = regexp.MustCompile(`[^\w\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// deriveSlug lowercases the title, strips non-word characters, collapses
// whitespace to hyphens and appends the last six digits of the millisecond
// timestamp. Uniqueness is probabilistic; the unique index on slug surfaces
// the rare collision as a conflict.
func deriveSlug(title string, now time.Time) string {
	s := strings.ToLower(title)
	s = nonWordChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	suffix := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("%s-%06d", s, suffix)
}

// deriveExcerpt keeps the first 200 characters of content. The ellipsis is
// appended only when content was actually truncated.
func deriveExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}
