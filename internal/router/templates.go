package router

import (
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates assembles the multitemplate renderer: every view is parsed
// together with the shared layouts so handler-facing names stay stable.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, templatesDir+"/views/"+view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
	}

	views := []string{
		"blog/index.html",
		"blog/category.html",
		"blog/profile.html",
		"blog/detail.html",
		"blog/create.html",
		"blog/comment.html",
		"blog/user.html",
		"auth/login.html",
		"auth/register.html",
		"error.html",
	}
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(view)...)
	}

	return r
}
