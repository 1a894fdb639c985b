package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/router"
	"blogicum/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds the full router against a fresh in-memory database.
func setupApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.DB = gdb

	// The page cache is a process singleton; drop anything a previous test
	// left behind.
	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("blogicum_session", store))
	r.HTMLRender = router.LoadTemplates("../../web/templates")
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

const testPassword = "password123"

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

// login posts the login form and returns the session cookies.
func login(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", testPassword)

	w := doRequest(r, http.MethodPost, "/login", form, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login as %s: expected 302, got %d", username, w.Code)
	}
	return (&http.Response{Header: w.Header()}).Cookies()
}

func doRequest(r *gin.Engine, method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// createPost seeds a post directly.
func createPost(t *testing.T, author *models.User, title string, published bool, pubDate time.Time) *models.Post {
	t.Helper()
	post := models.Post{
		Title:       title,
		Text:        "some text",
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return &post
}

func createComment(t *testing.T, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return &comment
}
