package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Kind selects which transactional template a message uses.
type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindPaymentReceipt    Kind = "payment_receipt"
	KindWelcome           Kind = "welcome"
	KindVerifyEmail       Kind = "verify_email"
	KindAdminNotice       Kind = "admin_notice"
)

const orderConfirmationHTML = `<html><body>
<h2>Thank you for your order</h2>
<p>Dear {{.CustomerName}},</p>
<p>Your order <strong>{{.OrderNumber}}</strong> has been placed.</p>
<p>Total: &#8377;{{printf "%.2f" .TotalAmount}}</p>
<p>Thanks for shopping with us.</p>
</body></html>`

const paymentReceiptHTML = `<html><body>
<h2>Payment received</h2>
<p>Dear Customer,</p>
<p>Your payment of &#8377;{{printf "%.2f" .Amount}} was successful.</p>
<p>Payment ID: {{.PaymentID}}</p>
<p>Thank you for your purchase!</p>
</body></html>`

const welcomeHTML = `<html><body>
<h2>Welcome!</h2>
<p>Hi {{.Username}}, thanks for joining our boutique.</p>
</body></html>`

const verifyEmailHTML = `<html><body>
<p>Hi {{.Username}},</p>
<p>Please verify your email by visiting: <a href="{{.VerifyURL}}">{{.VerifyURL}}</a></p>
<p>Thanks!</p>
</body></html>`

const adminNoticeHTML = `<html><body><pre>{{.Body}}</pre></body></html>`

var templates = map[Kind]*template.Template{
	KindOrderConfirmation: template.Must(template.New(string(KindOrderConfirmation)).Parse(orderConfirmationHTML)),
	KindPaymentReceipt:    template.Must(template.New(string(KindPaymentReceipt)).Parse(paymentReceiptHTML)),
	KindWelcome:           template.Must(template.New(string(KindWelcome)).Parse(welcomeHTML)),
	KindVerifyEmail:       template.Must(template.New(string(KindVerifyEmail)).Parse(verifyEmailHTML)),
	KindAdminNotice:       template.Must(template.New(string(KindAdminNotice)).Parse(adminNoticeHTML)),
}

// Data carries the fields the templates interpolate. Unused fields are
// ignored by each template.
type Data struct {
	Subject      string
	CustomerName string
	OrderNumber  string
	TotalAmount  float64
	Amount       float64
	PaymentID    string
	Username     string
	VerifyURL    string
	Body         string
}

// Render produces the HTML body for a template kind.
func Render(kind Kind, data Data) (string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown template kind %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", kind, err)
	}
	return buf.String(), nil
}
