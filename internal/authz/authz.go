// Package authz holds the ownership and visibility predicates the handlers
// compose before reading or mutating anything.
package authz

import (
	"blogicum/internal/models"
)

// CanModifyPost reports whether actor may update or delete post. Only the
// author can; a nil actor is anonymous.
func CanModifyPost(actor *models.User, post *models.Post) bool {
	return actor != nil && actor.ID == post.AuthorID
}

// CanViewPost reports whether actor may open post's detail page. Unpublished
// posts are visible to their author only; to anyone else they do not exist,
// so callers answer not-found rather than forbidden.
func CanViewPost(actor *models.User, post *models.Post) bool {
	if post.IsPublished {
		return true
	}
	return CanModifyPost(actor, post)
}
