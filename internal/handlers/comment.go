package handlers

import (
	"fmt"
	"net/http"
	"os"

	"blogicum/internal/db"
	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	mailService *services.MailService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		mailService: services.NewMailService(),
	}
}

// findOwnComment looks a comment up constrained by id, post and author at
// once. Wrong author, wrong post or wrong id all read the same: not found.
func findOwnComment(actor *models.User, postID, commentID uint) (models.Comment, bool) {
	var comment models.Comment
	err := db.DB.
		Where("id = ? AND post_id = ? AND author_id = ?", commentID, postID, actor.ID).
		First(&comment).Error
	return comment, err == nil
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var post models.Post
	if err := db.DB.Preload("Author").First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var form forms.CommentForm
	if fieldErrors := forms.Bind(c, &form); fieldErrors != nil {
		Render(c, http.StatusBadRequest, "blog/comment.html", gin.H{
			"Title":  "Add comment",
			"Post":   post,
			"Form":   form,
			"Errors": fieldErrors,
		})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save the comment.")
		return
	}

	utils.GetCache().Delete(detailCacheKey(post.ID))

	// Tell the post author, unless they commented themselves.
	if post.AuthorID != user.ID {
		postLink := fmt.Sprintf("%s/posts/%d", os.Getenv("SITE_URL"), post.ID)
		h.mailService.SendCommentNotification(
			post.Author.Email,
			user.Username,
			post.Title,
			form.Text,
			postLink,
		)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, okPost := utils.StringToUint(c.Param("post_id"))
	commentID, okComment := utils.StringToUint(c.Param("comment_id"))
	if !okPost || !okComment {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	comment, found := findOwnComment(user, postID, commentID)
	if !found {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Title":   "Edit comment",
		"Comment": comment,
		"Form":    forms.CommentForm{Text: comment.Text},
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, okPost := utils.StringToUint(c.Param("post_id"))
	commentID, okComment := utils.StringToUint(c.Param("comment_id"))
	if !okPost || !okComment {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	comment, found := findOwnComment(user, postID, commentID)
	if !found {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	var form forms.CommentForm
	if fieldErrors := forms.Bind(c, &form); fieldErrors != nil {
		Render(c, http.StatusBadRequest, "blog/comment.html", gin.H{
			"Title":   "Edit comment",
			"Comment": comment,
			"Form":    form,
			"Errors":  fieldErrors,
		})
		return
	}

	comment.Text = form.Text
	if err := db.DB.Save(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save the comment.")
		return
	}

	utils.GetCache().Delete(detailCacheKey(postID))

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, okPost := utils.StringToUint(c.Param("post_id"))
	commentID, okComment := utils.StringToUint(c.Param("comment_id"))
	if !okPost || !okComment {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	comment, found := findOwnComment(user, postID, commentID)
	if !found {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to delete the comment.")
		return
	}

	utils.GetCache().Delete(detailCacheKey(postID))

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}
