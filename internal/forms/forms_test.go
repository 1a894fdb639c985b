package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestParsePubDateLayouts(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-03-01T15:04", true},
		{"2026-03-01 15:04", true},
		{"2026-03-01", true},
		{"01.03.2026", false},
		{"", false},
	}
	for _, tc := range cases {
		f := PostForm{PubDate: tc.in}
		got, ok := f.ParsePubDate(time.UTC)
		if ok != tc.ok {
			t.Errorf("ParsePubDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got.Year() != 2026 {
			t.Errorf("ParsePubDate(%q) = %v", tc.in, got)
		}
	}
}

func bindForm(t *testing.T, values url.Values, form interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return Bind(c, form)
}

func TestBindReportsErrorsUnderFormNames(t *testing.T) {
	values := url.Values{}
	values.Set("text", "body")
	// title and pub_date missing

	var form PostForm
	errs := bindForm(t, values, &form)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	if errs["title"] != "This field is required." {
		t.Errorf(`errs["title"] = %q`, errs["title"])
	}
	if _, ok := errs["pub_date"]; !ok {
		t.Error("missing pub_date error")
	}
	if _, ok := errs["Title"]; ok {
		t.Error("errors keyed by struct field name instead of form name")
	}
}

func TestBindValidForm(t *testing.T) {
	values := url.Values{}
	values.Set("text", "nice")

	var form CommentForm
	if errs := bindForm(t, values, &form); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if form.Text != "nice" {
		t.Errorf("Text = %q", form.Text)
	}
}
