// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return s.send(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	return s.sendHTML(to, "", subject, htmlBody)
}

func (s *Service) sendHTML(to []string, replyTo, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	// Simple multipart message
	boundary := "boundary-dyreklinik"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return s.send(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// ContactMessage holds a submitted contact form
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

type contactData struct {
	ClinicName string
	Msg        ContactMessage
}

type passwordResetData struct {
	ClinicName string
	UserName   string
	ResetURL   string
}

// SendContactEmail forwards a contact form submission to the clinic inbox.
// Reply-To is set to the visitor's address so staff can answer directly.
func (s *Service) SendContactEmail(to string, msg ContactMessage) error {
	data := contactData{
		ClinicName: s.config.FromName,
		Msg:        msg,
	}

	subject := "Ny henvendelse fra hjemmesiden"
	if msg.Subject != "" {
		subject = "Henvendelse: " + msg.Subject
	}

	html, err := renderTemplate(contactEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render contact template: %w", err)
	}

	return s.sendHTML([]string{to}, msg.Email, subject, html)
}

// SendPasswordResetEmail sends a password reset email
func (s *Service) SendPasswordResetEmail(to, userName, resetURL string) error {
	data := passwordResetData{
		ClinicName: s.config.FromName,
		UserName:   userName,
		ResetURL:   resetURL,
	}

	subject := "Nulstil din adgangskode"
	html, err := renderTemplate(passwordResetEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Ny henvendelse</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #2c7a5b; padding-bottom: 10px; margin-bottom: 20px; }
        .field { margin-bottom: 8px; }
        .label { font-weight: bold; }
        .message { background: #f5f5f5; padding: 12px; border-radius: 4px; margin: 20px 0; white-space: pre-wrap; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.ClinicName}}</h1>
    </div>

    <h2>Ny henvendelse fra hjemmesiden</h2>

    <div class="field"><span class="label">Navn:</span> {{.Msg.Name}}</div>
    <div class="field"><span class="label">Email:</span> {{.Msg.Email}}</div>
    {{if .Msg.Phone}}<div class="field"><span class="label">Telefon:</span> {{.Msg.Phone}}</div>{{end}}
    {{if .Msg.Subject}}<div class="field"><span class="label">Emne:</span> {{.Msg.Subject}}</div>{{end}}

    <div class="message">{{.Msg.Message}}</div>

    <div class="footer">
        <p>Denne besked er sendt via kontaktformularen. Svar direkte på denne mail for at kontakte afsenderen.</p>
    </div>
</body>
</html>`

const passwordResetEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Nulstil din adgangskode</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #2c7a5b; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #2c7a5b; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #2c7a5b; }
        .warning { background: #fff3cd; padding: 12px; border-radius: 4px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.ClinicName}}</h1>
    </div>

    <h2>Nulstilling af adgangskode</h2>

    <p>Hej {{.UserName}},</p>

    <p>Vi har modtaget en anmodning om at nulstille din adgangskode. Klik på knappen herunder for at vælge en ny:</p>

    <p>
        <a href="{{.ResetURL}}" class="button">Nulstil adgangskode</a>
    </p>

    <p>Eller kopiér dette link ind i din browser:</p>
    <p class="link">{{.ResetURL}}</p>

    <div class="warning">
        <strong>Bemærk:</strong> Linket udløber om 1 time.
    </div>

    <div class="footer">
        <p>Hvis du ikke har anmodet om en nulstilling, kan du se bort fra denne mail. Din adgangskode forbliver uændret.</p>
    </div>
</body>
</html>`
