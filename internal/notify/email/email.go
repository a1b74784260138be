// Package email sends moderation digests to the configured moderator
// addresses over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Notifier delivers moderation digests by email.
type Notifier struct {
	config    *config.EmailConfig
	serverURL string
	siteTitle string
}

// New creates an email notifier, or nil when email digests are
// disabled.
func New(cfg *config.EmailConfig, serverURL, siteTitle string) *Notifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Notifier{
		config:    cfg,
		serverURL: strings.TrimRight(serverURL, "/"),
		siteTitle: siteTitle,
	}
}

// Name implements notify.Notifier.
func (n *Notifier) Name() string { return "email" }

// digestData is the template context for one digest email.
type digestData struct {
	SiteTitle string
	AdminURL  string
	Total     int
	Pages     []digestPage
}

type digestPage struct {
	Slug  string
	Count int
	URL   string
}

// NotifyPending implements notify.Notifier.
func (n *Notifier) NotifyPending(_ context.Context, pending []store.PendingSlug) error {
	total := 0
	data := digestData{
		SiteTitle: n.siteTitle,
		AdminURL:  n.serverURL + "/admin",
	}
	for _, p := range pending {
		total += p.Count
		data.Pages = append(data.Pages, digestPage{
			Slug:  p.Slug,
			Count: p.Count,
			URL:   fmt.Sprintf("%s/admin#%s", n.serverURL, p.Slug),
		})
	}
	data.Total = total

	body, err := n.digestBody(data)
	if err != nil {
		return fmt.Errorf("failed to generate digest body: %w", err)
	}

	subject := fmt.Sprintf("[%s] %d comment(s) awaiting moderation", n.siteTitle, total)
	return n.send(subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

func (n *Notifier) digestBody(data digestData) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "digest.html", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *Notifier) send(subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Sidenote"
	}

	msg := mail.NewMSG()
	msg.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	for _, to := range n.config.ModeratorEmails {
		msg.AddTo(to)
	}
	msg.SetSubject(subject)
	msg.SetBody(mail.TextHTML, body)

	if err := msg.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	log.Info("moderation digest sent", "recipients", len(n.config.ModeratorEmails), "subject", subject)
	return nil
}
