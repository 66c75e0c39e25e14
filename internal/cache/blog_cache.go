package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gopherblog/internal/model"
)

const (
	featuredKey   = "blog:featured"
	categoriesKey = "blog:categories"
)

// BlogCache holds the featured list and category set in redis with short
// TTLs. Entries are dropped whenever a blog is created, updated or deleted.
type BlogCache struct {
	client        *redisv9.Client
	featuredTTL   time.Duration
	categoriesTTL time.Duration
}

func NewBlogCache(client *redisv9.Client, featuredTTL, categoriesTTL time.Duration) *BlogCache {
	if featuredTTL <= 0 {
		featuredTTL = 60 * time.Second
	}
	if categoriesTTL <= 0 {
		categoriesTTL = 5 * time.Minute
	}
	return &BlogCache{
		client:        client,
		featuredTTL:   featuredTTL,
		categoriesTTL: categoriesTTL,
	}
}

func (c *BlogCache) GetFeatured(ctx context.Context) ([]model.Blog, bool, error) {
	raw, err := c.client.Get(ctx, featuredKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get featured failed: %w", err)
	}

	var blogs []model.Blog
	if err := json.Unmarshal([]byte(raw), &blogs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached featured failed: %w", err)
	}
	return blogs, true, nil
}

func (c *BlogCache) SetFeatured(ctx context.Context, blogs []model.Blog) error {
	payload, err := json.Marshal(blogs)
	if err != nil {
		return fmt.Errorf("marshal featured cache failed: %w", err)
	}
	if err := c.client.Set(ctx, featuredKey, payload, c.featuredTTL).Err(); err != nil {
		return fmt.Errorf("redis set featured failed: %w", err)
	}
	return nil
}

func (c *BlogCache) GetCategories(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get categories failed: %w", err)
	}

	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached categories failed: %w", err)
	}
	return categories, true, nil
}

func (c *BlogCache) SetCategories(ctx context.Context, categories []string) error {
	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories cache failed: %w", err)
	}
	if err := c.client.Set(ctx, categoriesKey, payload, c.categoriesTTL).Err(); err != nil {
		return fmt.Errorf("redis set categories failed: %w", err)
	}
	return nil
}

func (c *BlogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, featuredKey, categoriesKey).Err(); err != nil {
		return fmt.Errorf("redis invalidate blog cache failed: %w", err)
	}
	return nil
}
