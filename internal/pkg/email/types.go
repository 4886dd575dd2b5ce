package email

import "time"

// Email represents a rendered email ready to send
type Email struct {
	To          []string          `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"html_content"`
	TextContent string            `json:"text_content,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// EmailType identifies the template used for an email
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
	EmailTypePasswordReset     EmailType = "password_reset"
)

// BaseTemplateData holds fields shared by all email templates
type BaseTemplateData struct {
	AppName      string `json:"app_name"`
	SupportEmail string `json:"support_email"`
	Year         int    `json:"year"`
}

// WelcomeEmailData carries template data for the welcome email
type WelcomeEmailData struct {
	BaseTemplateData
	FirstName string `json:"first_name"`
}

// OrderItemData is a single line in an order email
type OrderItemData struct {
	Name       string `json:"name"`
	VendorName string `json:"vendor_name"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	Total      string `json:"total"`
}

// OrderConfirmationData carries template data for the confirmation email
type OrderConfirmationData struct {
	BaseTemplateData
	FirstName       string          `json:"first_name"`
	OrderNumber     string          `json:"order_number"`
	OrderDate       string          `json:"order_date"`
	Items           []OrderItemData `json:"items"`
	Subtotal        string          `json:"subtotal"`
	Discount        string          `json:"discount"`
	AddOns          string          `json:"add_ons"`
	Total           string          `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
}

// OrderStatusUpdateData carries template data for status change emails
type OrderStatusUpdateData struct {
	BaseTemplateData
	FirstName   string `json:"first_name"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

func newBaseTemplateData(appName, supportEmail string) BaseTemplateData {
	return BaseTemplateData{
		AppName:      appName,
		SupportEmail: supportEmail,
		Year:         time.Now().Year(),
	}
}
