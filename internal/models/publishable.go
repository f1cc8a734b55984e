package models

import (
	"time"
)

// Publishable 可发布内容的公共字段，未发布时默认对外隐藏
type Publishable struct {
	IsPublished bool      `gorm:"not null;index" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}
