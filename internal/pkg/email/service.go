package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
)

// Service renders and delivers transactional email. The "log" provider
// writes the rendered message to the application log, which keeps local
// development working without an SMTP server.
type Service struct {
	config    *config.Config
	templates map[EmailType]*template.Template
	logger    *logrus.Logger
}

// NewService creates the email service and parses the built-in templates
func NewService(cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	s := &Service{
		config:    cfg,
		templates: make(map[EmailType]*template.Template),
		logger:    logger,
	}
	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return s, nil
}

// SendWelcomeEmail sends the post-registration welcome email
func (s *Service) SendWelcomeEmail(u *user.User) error {
	data := WelcomeEmailData{
		BaseTemplateData: s.baseData(),
		FirstName:        u.FirstName,
	}

	html, err := s.render(EmailTypeWelcome, data)
	if err != nil {
		return err
	}

	return s.send(&Email{
		To:          []string{u.Email},
		Subject:     fmt.Sprintf("Welcome to %s", s.config.App.Name),
		HTMLContent: html,
	})
}

// SendOrderConfirmation sends the receipt email after an order is placed
func (s *Service) SendOrderConfirmation(u *user.User, o *order.Order) error {
	items := make([]OrderItemData, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemData{
			Name:       item.Name,
			VendorName: item.VendorName,
			Quantity:   item.Quantity,
			Price:      s.formatAmount(item.Price),
			Total:      s.formatAmount(item.TotalPrice),
		})
	}

	data := OrderConfirmationData{
		BaseTemplateData: s.baseData(),
		FirstName:        u.FirstName,
		OrderNumber:      o.OrderNumber,
		OrderDate:        o.CreatedAt.Format("2 January 2006"),
		Items:            items,
		Subtotal:         s.formatAmount(o.SubtotalAmount),
		Discount:         s.formatAmount(o.DiscountAmount),
		AddOns:           s.formatAmount(o.AddOnAmount()),
		Total:            s.formatAmount(o.TotalAmount),
		ShippingAddress:  formatShippingAddress(&o.ShippingAddress),
	}

	html, err := s.render(EmailTypeOrderConfirmation, data)
	if err != nil {
		return err
	}

	return s.send(&Email{
		To:          []string{u.Email},
		Subject:     fmt.Sprintf("Order %s confirmed", o.OrderNumber),
		HTMLContent: html,
	})
}

// SendOrderStatusUpdate notifies the customer about an order status change
func (s *Service) SendOrderStatusUpdate(u *user.User, o *order.Order, message string) error {
	data := OrderStatusUpdateData{
		BaseTemplateData: s.baseData(),
		FirstName:        u.FirstName,
		OrderNumber:      o.OrderNumber,
		Status:           string(o.Status),
		Message:          message,
	}

	html, err := s.render(EmailTypeOrderStatusUpdate, data)
	if err != nil {
		return err
	}

	return s.send(&Email{
		To:          []string{u.Email},
		Subject:     fmt.Sprintf("Order %s is now %s", o.OrderNumber, o.Status),
		HTMLContent: html,
	})
}

// send dispatches an email through the configured provider
func (s *Service) send(email *Email) error {
	switch strings.ToLower(s.config.Email.Provider) {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "log", "":
		s.logger.WithFields(logrus.Fields{
			"to":      strings.Join(email.To, ", "),
			"subject": email.Subject,
		}).Info("Email delivery skipped, log provider active")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// render executes the template for the given email type
func (s *Service) render(emailType EmailType, data interface{}) (string, error) {
	tmpl, ok := s.templates[emailType]
	if !ok {
		return "", fmt.Errorf("template not found for email type: %s", emailType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", emailType, err)
	}
	return buf.String(), nil
}

func (s *Service) baseData() BaseTemplateData {
	return newBaseTemplateData(s.config.App.Name, s.config.Email.FromEmail)
}

// formatAmount renders a minor-unit amount with thousands separators,
// e.g. 150000 IDR becomes "IDR 150.000".
func (s *Service) formatAmount(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s %s%s", s.config.Checkout.Currency, sign, b.String())
}

func formatShippingAddress(a *order.Address) string {
	parts := []string{
		fmt.Sprintf("%s %s", a.FirstName, a.LastName),
		a.AddressLine1,
	}
	if a.AddressLine2 != "" {
		parts = append(parts, a.AddressLine2)
	}
	parts = append(parts, fmt.Sprintf("%s, %s %s", a.City, a.State, a.PostalCode), a.Country)
	return strings.Join(parts, "\n")
}

func (s *Service) loadTemplates() error {
	for emailType, body := range builtinTemplates {
		tmpl, err := template.New(string(emailType)).Parse(body)
		if err != nil {
			return fmt.Errorf("failed to parse %s template: %w", emailType, err)
		}
		s.templates[emailType] = tmpl
	}
	return nil
}

var builtinTemplates = map[EmailType]string{
	EmailTypeWelcome: `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome to {{.AppName}}, {{.FirstName}}!</h2>
  <p>Your account is ready. Browse beans from local roasters and build your first order.</p>
  <p>Questions? Reach us at {{.SupportEmail}}.</p>
  <p style="color: #999; font-size: 12px;">&copy; {{.Year}} {{.AppName}}</p>
</body>
</html>`,

	EmailTypeOrderConfirmation: `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thanks for your order, {{.FirstName}}!</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
  <table width="100%" cellpadding="6" style="border-collapse: collapse;">
    <tr style="text-align: left; border-bottom: 1px solid #ddd;">
      <th>Item</th><th>Roaster</th><th>Qty</th><th>Price</th><th>Total</th>
    </tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}</td><td>{{.VendorName}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Total}}</td>
    </tr>
    {{end}}
  </table>
  <p>
    Subtotal: {{.Subtotal}}<br>
    Discount: {{.Discount}}<br>
    Add-ons: {{.AddOns}}<br>
    <strong>Total: {{.Total}}</strong>
  </p>
  <h3>Shipping to</h3>
  <p style="white-space: pre-line;">{{.ShippingAddress}}</p>
  <p style="color: #999; font-size: 12px;">&copy; {{.Year}} {{.AppName}}</p>
</body>
</html>`,

	EmailTypeOrderStatusUpdate: `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Order update, {{.FirstName}}</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
  {{if .Message}}<p>{{.Message}}</p>{{end}}
  <p>Questions? Reach us at {{.SupportEmail}}.</p>
  <p style="color: #999; font-size: 12px;">&copy; {{.Year}} {{.AppName}}</p>
</body>
</html>`,
}
