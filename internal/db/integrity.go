package db

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Deletes below spell out the referential rules instead of relying on
// the store's foreign keys alone:
//   user     -> its posts, its comments, comments on its posts
//   post     -> its comments
//   category -> posts.category_id = NULL
//   location -> posts.location_id = NULL

func DeletePost(ctx context.Context, gdb *gorm.DB, postID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}

func DeleteComment(ctx context.Context, gdb *gorm.DB, commentID uint) error {
	return gdb.WithContext(ctx).Delete(&models.Comment{}, commentID).Error
}

func DeleteCategory(ctx context.Context, gdb *gorm.DB, categoryID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("category_id = ?", categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, categoryID).Error
	})
}

func DeleteLocation(ctx context.Context, gdb *gorm.DB, locationID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("location_id = ?", locationID).
			Update("location_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Location{}, locationID).Error
	})
}

func DeleteUser(ctx context.Context, gdb *gorm.DB, userID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", userID)
		if err := tx.Where("author_id = ? OR post_id IN (?)", userID, ownPosts).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
