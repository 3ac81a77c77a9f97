// Package mailer delivers seller notifications by email.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
	"github.com/georgemunganga/medibridge/internal/modules/user"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	expiringTemplate = "expiring.html"
	expiredTemplate  = "expired.html"
)

var ErrNoRecipient = errors.New("seller has no email address")

// Config holds the SMTP relay settings.
type Config struct {
	Host        string
	Port        string
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

// Recipients resolves a seller id to an account. user.Repository satisfies it.
type Recipients interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier implements inventory.Notifier over SMTP.
type SMTPNotifier struct {
	cfg       Config
	auth      smtp.Auth
	users     Recipients
	templates *template.Template
	send      sendFunc
}

var _ inventory.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg Config, users Recipients) (*SMTPNotifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	n := &SMTPNotifier{cfg: cfg, users: users, templates: tmpl, send: smtp.SendMail}
	if cfg.Username != "" {
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return n, nil
}

type emailData struct {
	SellerName   string
	MedicineName string
	MedicineID   string
	Price        string
	Stock        int
	ExpiryDate   string
	Days         int
}

func (n *SMTPNotifier) NotifyExpiring(ctx context.Context, m inventory.Medicine, daysLeft int) error {
	return n.notify(ctx, m, daysLeft, "Important: Medicine Expiring Soon - Action Required", expiringTemplate)
}

func (n *SMTPNotifier) NotifyExpired(ctx context.Context, m inventory.Medicine, daysSince int) error {
	return n.notify(ctx, m, daysSince, "URGENT: Medicine Expired - Removed from Inventory", expiredTemplate)
}

func (n *SMTPNotifier) notify(ctx context.Context, m inventory.Medicine, days int, subject, templateName string) error {
	seller, err := n.users.GetUserByID(ctx, m.SellerID)
	if err != nil {
		return fmt.Errorf("look up seller %s: %w", m.SellerID, err)
	}
	if seller.Email == "" {
		return ErrNoRecipient
	}
	name := seller.FullName
	if name == "" {
		name = seller.Username
	}

	var body bytes.Buffer
	err = n.templates.ExecuteTemplate(&body, templateName, emailData{
		SellerName:   name,
		MedicineName: m.Name,
		MedicineID:   string(m.ID),
		Price:        m.Price.StringFixed(2),
		Stock:        m.Stock,
		ExpiryDate:   m.ExpiryDate.String(),
		Days:         days,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", n.cfg.SenderName, n.cfg.SenderEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", seller.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())

	addr := n.cfg.Host + ":" + n.cfg.Port
	if err := n.send(addr, n.auth, n.cfg.SenderEmail, []string{seller.Email}, msg.Bytes()); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
