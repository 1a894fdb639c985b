package handlers

import (
	"errors"
	"net/http"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/queries"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile lists a user's posts. The owner sees all of them, drafts and
// scheduled posts included; everyone else only the public subset.
func (h *UserHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	now := time.Now()

	var profile models.User
	if err := db.DB.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RenderError(c, http.StatusNotFound, "User not found.")
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to load the profile.")
		}
		return
	}

	viewer := middleware.CurrentUser(c)

	page, err := queries.Paginate(queries.ByAuthor(db.DB, now, &profile, viewer), pageParam(c))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts.")
		return
	}

	// Pointer, not value: FullName has a pointer receiver and html/template
	// cannot take the address of a map entry.
	Render(c, http.StatusOK, "blog/profile.html", gin.H{
		"Title":   profile.Username,
		"Profile": &profile,
		"IsOwner": viewer != nil && viewer.ID == profile.ID,
		"Page":    page,
	})
}

// ShowSettings renders the profile edit form. The target is always the
// session user; no id is accepted from the client.
func (h *UserHandler) ShowSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)

	Render(c, http.StatusOK, "blog/user.html", gin.H{
		"Title": "Profile settings",
		"Form": forms.ProfileForm{
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Avatar:    user.Avatar,
		},
	})
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form forms.ProfileForm
	if fieldErrors := forms.Bind(c, &form); fieldErrors != nil {
		Render(c, http.StatusBadRequest, "blog/user.html", gin.H{
			"Title":  "Profile settings",
			"Form":   form,
			"Errors": fieldErrors,
		})
		return
	}

	user.Username = form.Username
	user.Email = form.Email
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Avatar = form.Avatar

	if err := db.DB.Save(user).Error; err != nil {
		// Almost always the username/email unique index.
		Render(c, http.StatusConflict, "blog/user.html", gin.H{
			"Title": "Profile settings",
			"Form":  form,
			"Error": "That username or email is already taken.",
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}
