// Package policy decides which posts and comments a viewer may see or change.
package policy

import (
	"time"

	"blogicum/internal/models"
)

// Viewer is the identity behind a request. The zero value is anonymous.
type Viewer struct {
	UserID uint
}

// Owned is anything with a single owning author.
type Owned interface {
	OwnerID() uint
}

func ViewerFrom(u *models.User) Viewer {
	if u == nil {
		return Viewer{}
	}
	return Viewer{UserID: u.ID}
}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// Owns reports whether v is the author of o. Anonymous viewers own nothing.
func (v Viewer) Owns(o Owned) bool {
	return v.Authenticated() && o.OwnerID() == v.UserID
}

// IsPublic is the public visibility predicate for a post.
// A post without a category passes the category check; a post whose
// category was not loaded does not.
func IsPublic(p *models.Post, now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.CategoryID == nil {
		return true
	}
	return p.Category != nil && p.Category.IsPublished
}

// CanView lets authors see their own posts regardless of flags.
func CanView(v Viewer, p *models.Post, now time.Time) bool {
	if v.Owns(p) {
		return true
	}
	return IsPublic(p, now)
}

// CanMutate reports whether v may edit or delete o.
func CanMutate(v Viewer, o Owned) bool {
	return v.Owns(o)
}
