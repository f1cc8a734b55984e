package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"

	"gorm.io/gorm"
)

// PageSize is the number of posts per listing page.
const PageSize = 10

// LastPage can be passed as a page number to select the final page.
const LastPage = -1

// ErrNotFound covers missing rows, hidden categories and out-of-range pages.
var ErrNotFound = errors.New("not found")

// Page is one page of a post listing.
type Page struct {
	Number     int
	TotalPages int
	Total      int64
	Posts      []models.Post
}

func (p *Page) HasPrev() bool   { return p.Number > 1 }
func (p *Page) HasNext() bool   { return p.Number < p.TotalPages }
func (p *Page) PrevNumber() int { return p.Number - 1 }
func (p *Page) NextNumber() int { return p.Number + 1 }

// PostListing builds the viewer-filtered post lists.
type PostListing struct {
	db *gorm.DB
}

func NewPostListing(db *gorm.DB) *PostListing {
	return &PostListing{db: db}
}

// publicPosts keeps published posts whose pub_date has passed and whose
// category is either unset or published.
func publicPosts(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now.UTC()).
			Where("(posts.category_id IS NULL OR posts.category_id IN (SELECT id FROM categories WHERE is_published = ?))", true)
	}
}

func inCategory(categoryID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.category_id = ?", categoryID)
	}
}

func byAuthor(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// Index lists every publicly visible post.
func (s *PostListing) Index(ctx context.Context, page int, now time.Time) (*Page, error) {
	return s.paginate(ctx, page, publicPosts(now))
}

// Category lists the public posts of a published category.
func (s *PostListing) Category(ctx context.Context, slug string, page int, now time.Time) (*models.Category, *Page, error) {
	var category models.Category
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, nil, notFound(err, "category %q", slug)
	}

	p, err := s.paginate(ctx, page, publicPosts(now), inCategory(category.ID))
	if err != nil {
		return nil, nil, err
	}
	return &category, p, nil
}

// Profile lists a user's posts. The owner sees all of them, anyone else
// only the public ones.
func (s *PostListing) Profile(ctx context.Context, viewer policy.Viewer, username string, page int, now time.Time) (*models.User, *Page, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, nil, notFound(err, "user %q", username)
	}

	scopes := []func(*gorm.DB) *gorm.DB{byAuthor(user.ID)}
	if viewer.UserID != user.ID {
		scopes = append(scopes, publicPosts(now))
	}

	p, err := s.paginate(ctx, page, scopes...)
	if err != nil {
		return nil, nil, err
	}
	return &user, p, nil
}

// Recent returns up to limit public posts, newest first, for feeds.
func (s *PostListing) Recent(ctx context.Context, limit int, now time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(publicPosts(now)).
		Preload("Author").Preload("Category").
		Order("posts.pub_date DESC").
		Order("posts.id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	return posts, nil
}

// Categories returns the published categories.
func (s *PostListing) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("title ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *PostListing) paginate(ctx context.Context, number int, scopes ...func(*gorm.DB) *gorm.DB) (*Page, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	// an empty listing still has page 1
	totalPages := int(math.Ceil(float64(total) / float64(PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}
	if number == LastPage {
		number = totalPages
	}
	if number < 1 || number > totalPages {
		return nil, fmt.Errorf("page %d of %d: %w", number, totalPages, ErrNotFound)
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(scopes...).
		Preload("Author").Preload("Category").Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id ASC").
		Limit(PageSize).
		Offset((number - 1) * PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := fillCommentCounts(ctx, s.db, posts); err != nil {
		return nil, err
	}

	return &Page{
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
		Posts:      posts,
	}, nil
}

// fillCommentCounts sets CommentCount on posts with one grouped query.
func fillCommentCounts(ctx context.Context, db *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
