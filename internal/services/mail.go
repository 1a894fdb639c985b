package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// MailService sends notification mail. Disabled unless all SMTP env vars are
// present, so local and test runs stay silent.
type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Blogicum <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("Failed to send mail to %s: %v", strings.Join(to, ","), err)
		}
	}()
}

// SendCommentNotification tells a post author someone commented on their
// post.
func (s *MailService) SendCommentNotification(to, commenter, postTitle, commentText, postLink string) {
	subject := fmt.Sprintf("New comment on \"%s\"", postTitle)
	body := fmt.Sprintf(
		"<p><strong>%s</strong> commented on your post <a href=\"%s\">%s</a>:</p>"+
			"<blockquote>%s</blockquote>",
		commenter, postLink, postTitle, commentText)
	s.sendAsync([]string{to}, subject, body)
}
