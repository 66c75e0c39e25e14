package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gopherblog/internal/model"
)

type BlogRepository struct {
	db *gorm.DB
}

// BlogFilter narrows List queries. Zero fields are ignored.
type BlogFilter struct {
	Status   string
	Category string // matched case-insensitively
	AuthorID uint
	Offset   int
	Limit    int
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(blog *model.Blog) error {
	if err := r.db.Create(blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create blog: %w", gorm.ErrDuplicatedKey)
		}
		return fmt.Errorf("create blog failed: %w", err)
	}
	return nil
}

func (r *BlogRepository) Save(blog *model.Blog) error {
	if err := r.db.Save(blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("save blog: %w", gorm.ErrDuplicatedKey)
		}
		return fmt.Errorf("save blog failed: %w", err)
	}
	return nil
}

func (r *BlogRepository) GetByID(id uint) (*model.Blog, error) {
	return r.getOne("id = ?", id)
}

func (r *BlogRepository) GetBySlug(slug string) (*model.Blog, error) {
	return r.getOne("slug = ?", slug)
}

func (r *BlogRepository) getOne(query string, arg interface{}) (*model.Blog, error) {
	var blog model.Blog
	err := r.db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC")
		}).
		Preload("Comments.Author").
		Where(query, arg).
		First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query blog failed: %w", err)
	}
	return &blog, nil
}

func (r *BlogRepository) List(filter BlogFilter) ([]model.Blog, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Category != "" {
			db = db.Where("LOWER(category) = LOWER(?)", filter.Category)
		}
		if filter.AuthorID != 0 {
			db = db.Where("author_id = ?", filter.AuthorID)
		}
		return db
	}

	var count int64
	if err := r.db.Model(&model.Blog{}).Scopes(scope).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count blogs failed: %w", err)
	}

	var blogs []model.Blog
	err := r.db.Model(&model.Blog{}).
		Scopes(scope).
		Preload("Author").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs failed: %w", err)
	}
	return blogs, count, nil
}

// Search runs a relevance-ranked full-text match over title and content,
// restricted to published blogs. On MySQL it uses the FULLTEXT index; on
// other dialects it falls back to a LIKE scan ordered by recency.
func (r *BlogRepository) Search(query string, offset, limit int) ([]model.Blog, int64, error) {
	fulltext := r.db.Dialector.Name() == "mysql"

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("status = ?", model.StatusPublished)
		if fulltext {
			return db.Where("MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)", query)
		}
		like := "%" + query + "%"
		return db.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var count int64
	if err := r.db.Model(&model.Blog{}).Scopes(scope).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count search results failed: %w", err)
	}

	scoped := r.db.Model(&model.Blog{}).
		Scopes(scope).
		Preload("Author").
		Offset(offset).
		Limit(limit)
	if fulltext {
		scoped = scoped.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE) DESC",
			Vars:               []interface{}{query},
			WithoutParentheses: true,
		}})
	} else {
		scoped = scoped.Order("created_at DESC")
	}

	var blogs []model.Blog
	if err := scoped.Find(&blogs).Error; err != nil {
		return nil, 0, fmt.Errorf("search blogs failed: %w", err)
	}
	return blogs, count, nil
}

func (r *BlogRepository) IncrementViewCount(id uint) error {
	err := r.db.Model(&model.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("increment view count failed: %w", err)
	}
	return nil
}

// Delete removes the blog and every comment referencing it in one
// transaction, so no orphan comments remain.
func (r *BlogRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Blog{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete blog failed: %w", err)
	}
	return nil
}

func (r *BlogRepository) DistinctCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.Blog{}).
		Where("status = ?", model.StatusPublished).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories failed: %w", err)
	}
	return categories, nil
}

func (r *BlogRepository) TopByViews(limit int) ([]model.Blog, error) {
	var blogs []model.Blog
	err := r.db.
		Preload("Author").
		Where("status = ?", model.StatusPublished).
		Order("view_count DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, fmt.Errorf("list top blogs failed: %w", err)
	}
	return blogs, nil
}
