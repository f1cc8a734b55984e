package services

import (
	"context"
	"fmt"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/models"
	"blogicum/internal/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Posts loads and stores single posts and their comments.
type Posts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) *Posts {
	return &Posts{db: db}
}

// Get returns the post with its author, category and location loaded.
func (s *Posts) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").Preload("Category").Preload("Location").
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post %d", id)
	}
	return &post, nil
}

// Visible returns the post if the viewer may see it. Hidden posts are
// reported as ErrNotFound so their existence is not disclosed.
func (s *Posts) Visible(ctx context.Context, viewer policy.Viewer, id uint, now time.Time) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(viewer, post, now) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return post, nil
}

// Public returns the post only if it is publicly visible, even to its author.
func (s *Posts) Public(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.IsPublic(post, now) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return post, nil
}

func (s *Posts) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *Posts) Update(ctx context.Context, post *models.Post) error {
	// Select writes false and nil values too. Updates ignores fields changed
	// in hooks, so pub_date is converted here.
	post.PubDate = post.PubDate.UTC()
	err := s.db.WithContext(ctx).Model(post).
		Select("title", "text", "pub_date", "category_id", "location_id", "image", "is_published").
		Omit(clause.Associations).
		Updates(post).Error
	if err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return nil
}

func (s *Posts) Delete(ctx context.Context, id uint) error {
	return db.DeletePost(ctx, s.db, id)
}

// Comments returns the comments of a post, oldest first.
func (s *Posts) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// Comment returns a comment that belongs to the given post.
func (s *Posts) Comment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if err != nil {
		return nil, notFound(err, "comment %d", commentID)
	}
	return &comment, nil
}

func (s *Posts) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (s *Posts) UpdateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.WithContext(ctx).Model(comment).
		Omit(clause.Associations).
		Update("text", comment.Text).Error
	if err != nil {
		return fmt.Errorf("update comment %d: %w", comment.ID, err)
	}
	return nil
}

func (s *Posts) DeleteComment(ctx context.Context, id uint) error {
	return db.DeleteComment(ctx, s.db, id)
}

// Categories and Locations feed the post form choices.
func (s *Posts) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Posts) Locations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
