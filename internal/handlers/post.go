package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"blogicum/internal/authz"
	"blogicum/internal/db"
	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/queries"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// pageParam reads the 1-based page query parameter.
func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if n := utils.StringToInt(p); n > 0 {
			page = n
		}
	}
	return page
}

func detailCacheKey(postID uint) string {
	return fmt.Sprintf("post:detail:%d", postID)
}

func cloneH(h gin.H) gin.H {
	out := make(gin.H, len(h)+2)
	for k, v := range h {
		out[k] = v
	}
	return out
}

// loadTaxonomies fetches the published categories and locations offered in
// the post form.
func loadTaxonomies() ([]models.Category, []models.Location) {
	var categories []models.Category
	db.DB.Where("is_published = ?", true).Order("title ASC").Find(&categories)
	var locations []models.Location
	db.DB.Where("is_published = ?", true).Order("name ASC").Find(&locations)
	return categories, locations
}

// Index lists the publicly visible posts, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	now := time.Now()

	page, err := queries.Paginate(queries.Visible(db.DB, now), pageParam(c))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts.")
		return
	}

	Render(c, http.StatusOK, "blog/index.html", gin.H{
		"Title": "Latest posts",
		"Page":  page,
	})
}

// ByCategory lists visible posts in one category. An unpublished category
// 404s as a whole, regardless of its posts.
func (h *PostHandler) ByCategory(c *gin.Context) {
	slug := c.Param("slug")
	now := time.Now()

	var category models.Category
	if err := db.DB.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Category not found.")
		return
	}

	page, err := queries.Paginate(queries.VisibleInCategory(db.DB, now, category.ID), pageParam(c))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts.")
		return
	}

	Render(c, http.StatusOK, "blog/category.html", gin.H{
		"Title":    category.Title,
		"Category": category,
		"Page":     page,
	})
}

// CommentView pairs a comment with its rendered body for the detail page.
type CommentView struct {
	models.Comment
	TextHTML template.HTML
}

// Detail shows one post with its comments, oldest first, and an empty
// comment form. Unpublished posts 404 for everyone but their author.
func (h *PostHandler) Detail(c *gin.Context) {
	postID, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	viewer := middleware.CurrentUser(c)

	// Shared cache: only ever holds published posts, whose page looks the
	// same for every viewer.
	cacheKey := detailCacheKey(postID)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			// Render mutates its map, so the cached one is never handed
			// out directly.
			Render(c, http.StatusOK, "blog/detail.html", cloneH(hData))
			return
		}
	}

	var post models.Post
	if err := db.DB.Preload("Author").Preload("Category").Preload("Location").
		First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RenderError(c, http.StatusNotFound, "Post not found.")
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to load the post.")
		}
		return
	}

	if !authz.CanViewPost(viewer, &post) {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	comments, err := queries.CommentsForPost(db.DB, post.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load comments.")
		return
	}

	commentViews := make([]CommentView, len(comments))
	for i, comment := range comments {
		commentViews[i] = CommentView{
			Comment:  comment,
			TextHTML: utils.RenderMarkdown(comment.Text),
		}
	}
	post.CommentCount = len(comments)

	renderData := gin.H{
		"Title":       post.Title,
		"Post":        post,
		"PostContent": utils.RenderMarkdown(post.Text),
		"Comments":    commentViews,
	}

	if post.IsPublished {
		utils.GetCache().Set(cacheKey, renderData, 5*time.Minute)
	}

	Render(c, http.StatusOK, "blog/detail.html", cloneH(renderData))
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	categories, locations := loadTaxonomies()

	Render(c, http.StatusOK, "blog/create.html", gin.H{
		"Title": "New post",
		"Form": forms.PostForm{
			IsPublished: true,
			PubDate:     time.Now().Format("2006-01-02T15:04"),
		},
		"Categories": categories,
		"Locations":  locations,
	})
}

// bindPostForm validates the submitted post fields and resolves the optional
// category/location references. A non-empty error map means nothing may be
// written.
func bindPostForm(c *gin.Context) (forms.PostForm, time.Time, *uint, *uint, map[string]string) {
	var form forms.PostForm
	fieldErrors := forms.Bind(c, &form)
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}

	var pubDate time.Time
	if form.PubDate != "" {
		var ok bool
		pubDate, ok = form.ParsePubDate(time.Local)
		if !ok {
			fieldErrors["pub_date"] = "Enter a valid date."
		}
	}

	var categoryID, locationID *uint
	if form.CategoryID != "" {
		id, ok := utils.StringToUint(form.CategoryID)
		if !ok {
			fieldErrors["category_id"] = "Select a valid category."
		} else {
			var category models.Category
			if err := db.DB.First(&category, id).Error; err != nil {
				fieldErrors["category_id"] = "Select a valid category."
			} else {
				categoryID = &category.ID
			}
		}
	}
	if form.LocationID != "" {
		id, ok := utils.StringToUint(form.LocationID)
		if !ok {
			fieldErrors["location_id"] = "Select a valid location."
		} else {
			var location models.Location
			if err := db.DB.First(&location, id).Error; err != nil {
				fieldErrors["location_id"] = "Select a valid location."
			} else {
				locationID = &location.ID
			}
		}
	}

	if len(fieldErrors) == 0 {
		fieldErrors = nil
	}
	return form, pubDate, categoryID, locationID, fieldErrors
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	form, pubDate, categoryID, locationID, fieldErrors := bindPostForm(c)
	if fieldErrors != nil {
		categories, locations := loadTaxonomies()
		Render(c, http.StatusBadRequest, "blog/create.html", gin.H{
			"Title":      "New post",
			"Form":       form,
			"Errors":     fieldErrors,
			"Categories": categories,
			"Locations":  locations,
		})
		return
	}

	post := models.Post{
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     pubDate,
		IsPublished: form.IsPublished,
		AuthorID:    user.ID,
		CategoryID:  categoryID,
		LocationID:  locationID,
		Image:       form.Image,
	}

	if err := db.DB.Create(&post).Error; err != nil {
		categories, locations := loadTaxonomies()
		Render(c, http.StatusInternalServerError, "blog/create.html", gin.H{
			"Title":      "New post",
			"Form":       form,
			"Error":      "Failed to save the post.",
			"Categories": categories,
			"Locations":  locations,
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	// Someone else's post: bounce to its page instead of erroring.
	if !authz.CanModifyPost(user, &post) {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	categories, locations := loadTaxonomies()
	Render(c, http.StatusOK, "blog/create.html", gin.H{
		"Title":      "Edit post",
		"Post":       post,
		"Form":       postFormFrom(post),
		"Categories": categories,
		"Locations":  locations,
	})
}

// postFormFrom pre-fills the form with a post's current values.
func postFormFrom(post models.Post) forms.PostForm {
	form := forms.PostForm{
		Title:       post.Title,
		Text:        post.Text,
		IsPublished: post.IsPublished,
		PubDate:     post.PubDate.Format("2006-01-02T15:04"),
		Image:       post.Image,
	}
	if post.CategoryID != nil {
		form.CategoryID = fmt.Sprint(*post.CategoryID)
	}
	if post.LocationID != nil {
		form.LocationID = fmt.Sprint(*post.LocationID)
	}
	return form
}

func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	if !authz.CanModifyPost(user, &post) {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	form, pubDate, categoryID, locationID, fieldErrors := bindPostForm(c)
	if fieldErrors != nil {
		categories, locations := loadTaxonomies()
		Render(c, http.StatusBadRequest, "blog/create.html", gin.H{
			"Title":      "Edit post",
			"Post":       post,
			"Form":       form,
			"Errors":     fieldErrors,
			"Categories": categories,
			"Locations":  locations,
		})
		return
	}

	post.Title = form.Title
	post.Text = form.Text
	post.IsPublished = form.IsPublished
	post.PubDate = pubDate
	post.CategoryID = categoryID
	post.LocationID = locationID
	post.Image = form.Image

	if err := db.DB.Save(&post).Error; err != nil {
		categories, locations := loadTaxonomies()
		Render(c, http.StatusInternalServerError, "blog/create.html", gin.H{
			"Title":      "Edit post",
			"Post":       post,
			"Form":       form,
			"Error":      "Failed to save the post.",
			"Categories": categories,
			"Locations":  locations,
		})
		return
	}

	utils.GetCache().Delete(detailCacheKey(post.ID))

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	if !authz.CanModifyPost(user, &post) {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	// Comments go with the post; done in one transaction rather than trusting
	// every backend's cascade configuration.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to delete the post.")
		return
	}

	utils.GetCache().Delete(detailCacheKey(post.ID))

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}
