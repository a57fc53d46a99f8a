// Package notify sends order confirmation emails over SMTP.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tamilyouth/preorder-api/internal/domain/order"
)

// Config holds the SMTP connection settings. An empty Host disables mailing.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether the config points at a real SMTP server.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// sendFunc matches smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends order confirmations to the customer's address.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// NewMailer constructs a Mailer from cfg.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// SendConfirmation renders and sends the confirmation mail for o.
func (m *Mailer) SendConfirmation(_ context.Context, o *order.Order) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, o)
	if err := m.send(addr, auth, m.cfg.From, []string{o.Customer.Email}, msg); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}

func buildMessage(from string, o *order.Order) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: TamilYouth <%s>\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", o.Customer.Email)
	fmt.Fprintf(&b, "Subject: TamilYouth - Bestellbestätigung %s\r\n", o.OrderID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Hallo %s\r\n\r\n", o.Customer.Name)
	fmt.Fprintf(&b, "Vielen Dank für deine Bestellung. Deine Bestellnummer: %s\r\n\r\n", o.OrderID)

	b.WriteString("Bestellübersicht:\r\n")
	for _, it := range o.Items {
		total := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "  %dx %s - CHF %s\r\n", it.Quantity, it.Name, total.StringFixed(2))
	}
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Zwischensumme: CHF %s\r\n", o.Subtotal.StringFixed(2))
	if o.DeliveryFee.IsPositive() {
		fmt.Fprintf(&b, "Lieferung: CHF %s\r\n", o.DeliveryFee.StringFixed(2))
	} else {
		b.WriteString("Lieferung: Gratis\r\n")
	}
	fmt.Fprintf(&b, "Gesamt: CHF %s\r\n\r\n", o.Total.StringFixed(2))

	if o.Delivery.Enabled {
		fmt.Fprintf(&b, "Lieferung an: %s\r\n", o.Delivery.Address.Display())
		b.WriteString("Dein Essen wird frisch zubereitet und geliefert.\r\n")
	} else {
		b.WriteString("Abholung im Restaurant.\r\n")
		b.WriteString("Dein Essen wird frisch zubereitet und ist zur Abholung bereit.\r\n")
	}

	b.WriteString("\r\nTamilYouth\r\n")
	return b.Bytes()
}

// LogNotifier stands in for the Mailer when SMTP is not configured. It logs
// the confirmation instead of sending it, so local setups work without a
// mail server.
type LogNotifier struct{}

// SendConfirmation logs the confirmation that would have been sent.
func (LogNotifier) SendConfirmation(ctx context.Context, o *order.Order) error {
	zctx.From(ctx).Info("Order confirmation (mail disabled)",
		zap.String("order_id", o.OrderID),
		zap.String("email", maskEmail(o.Customer.Email)),
	)
	return nil
}

// maskEmail hides the local part so mail addresses do not end up in logs.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
