package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed emails/*
var emailFS embed.FS

// EmailConfig holds branding pulled from emails/config.yaml
type EmailConfig struct {
	Branding struct {
		Name    string `yaml:"name"`
		Tagline string `yaml:"tagline"`
		Website string `yaml:"website"`
		Support string `yaml:"support"`
	} `yaml:"branding"`

	Design struct {
		PrimaryColor string `yaml:"primary_color"`
		TextColor    string `yaml:"text_color"`
		MutedColor   string `yaml:"muted_color"`
	} `yaml:"design"`
}

var (
	configOnce   sync.Once
	cachedConfig *EmailConfig
)

// defaultEmailConfig is the fallback when config.yaml cannot be read
func defaultEmailConfig() *EmailConfig {
	cfg := &EmailConfig{}
	cfg.Branding.Name = "Axialy"
	cfg.Branding.Tagline = "Business analysis, accelerated"
	cfg.Branding.Website = "https://axialy.ai"
	cfg.Branding.Support = "support@axialy.ai"
	cfg.Design.PrimaryColor = "#007BFF"
	cfg.Design.TextColor = "#0a0a0a"
	cfg.Design.MutedColor = "#777777"
	return cfg
}

// LoadEmailConfig reads the embedded branding config, falling back to
// built-in defaults.
func LoadEmailConfig() *EmailConfig {
	configOnce.Do(func() {
		data, err := emailFS.ReadFile("emails/config.yaml")
		if err != nil {
			cachedConfig = defaultEmailConfig()
			return
		}
		cfg := defaultEmailConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cachedConfig = defaultEmailConfig()
			return
		}
		cachedConfig = cfg
	})
	return cachedConfig
}

// emailData is the payload handed to every email template
type emailData struct {
	Link   string
	Config *EmailConfig
}

var (
	templateOnce sync.Once
	emailTmpl    *template.Template
	templateErr  error
)

func loadTemplates() (*template.Template, error) {
	templateOnce.Do(func() {
		emailTmpl, templateErr = template.ParseFS(emailFS, "emails/*.html")
	})
	return emailTmpl, templateErr
}

func renderHTML(name, link string) (string, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return "", fmt.Errorf("failed to load email templates: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, emailData{Link: link, Config: LoadEmailConfig()}); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderVerificationEmail builds the email-verification message
func RenderVerificationEmail(link string) (html, text string) {
	cfg := LoadEmailConfig()
	html, err := renderHTML("verification.html", link)
	if err != nil {
		html = fmt.Sprintf("<p>Please verify your email address:</p><p><a href=%q>%s</a></p>", link, link)
	}
	text = fmt.Sprintf(`Welcome to %s

Please open the link below to verify your email address:

%s

This link will expire in 24 hours.
If you didn't request this verification, please ignore this email.

—
%s
%s`, cfg.Branding.Name, link, cfg.Branding.Name, cfg.Branding.Website)
	return html, text
}

// RenderWelcomeEmail builds the post-signup welcome message
func RenderWelcomeEmail(loginURL string) (html, text string) {
	cfg := LoadEmailConfig()
	html, err := renderHTML("welcome.html", loginURL)
	if err != nil {
		html = fmt.Sprintf("<p>Your account has been created. Log in at <a href=%q>%s</a></p>", loginURL, loginURL)
	}
	text = fmt.Sprintf(`Welcome aboard!

Your account has been created successfully. You can now log in at:

%s

Thank you for choosing %s!

—
%s
%s`, loginURL, cfg.Branding.Name, cfg.Branding.Name, cfg.Branding.Website)
	return html, text
}

// RenderContentReviewEmail builds the review request message
func RenderContentReviewEmail(reviewLink string) (html, text string) {
	cfg := LoadEmailConfig()
	html, err := renderHTML("review.html", reviewLink)
	if err != nil {
		html = fmt.Sprintf("<p>You have been requested to review content. Open: <a href=%q>%s</a></p>", reviewLink, reviewLink)
	}
	text = fmt.Sprintf(`Hello,

You have been requested to review content in %s. Open the link below:

%s

Thank you.

—
%s
%s`, cfg.Branding.Name, reviewLink, cfg.Branding.Name, cfg.Branding.Website)
	return html, text
}
