// Package forms maps submitted field values onto entity attributes.
// Server-assigned fields (author, post linkage) are absent from the form
// structs so clients cannot supply them.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report validation errors under the form field name, not the Go one.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

type PostForm struct {
	Title string `form:"title" binding:"required,max=256"`
	Text  string `form:"text" binding:"required"`
	// Checkbox; the template submits value="true" when checked.
	IsPublished bool   `form:"is_published"`
	PubDate     string `form:"pub_date" binding:"required"`
	CategoryID  string `form:"category_id" binding:"omitempty,number"`
	LocationID  string `form:"location_id" binding:"omitempty,number"`
	Image       string `form:"image" binding:"omitempty,max=512"`
}

type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

type ProfileForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"required,email"`
	FirstName string `form:"first_name" binding:"omitempty,max=150"`
	LastName  string `form:"last_name" binding:"omitempty,max=150"`
	Avatar    string `form:"avatar" binding:"omitempty,max=512"`
}

// Layouts accepted for the pub_date field: the datetime-local input and a
// plain date fall back.
var pubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePubDate interprets the submitted publication date in the given
// location.
func (f *PostForm) ParsePubDate(loc *time.Location) (time.Time, bool) {
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, f.PubDate, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Bind fills form from the request body and returns per-field validation
// messages. A nil map means the form is valid.
func Bind(c *gin.Context, form interface{}) map[string]string {
	err := c.ShouldBind(form)
	if err == nil {
		return nil
	}

	fieldErrors := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fieldErrors[fe.Field()] = fieldMessage(fe)
		}
		return fieldErrors
	}

	fieldErrors["form"] = "Invalid form submission."
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "number":
		return "Must be a number."
	}
	return "Invalid value."
}
