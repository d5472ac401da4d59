package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ConfirmationLine is one order line rendered into the confirmation email.
type ConfirmationLine struct {
	Name           string
	ImageURL       string
	SelectedSize   string
	SelectedLength string
	Amount         int64
}

// Confirmation is the data behind the order-confirmation email body.
type Confirmation struct {
	OrderNumber        string
	Lines              []ConfirmationLine
	TotalAmount        int64
	PromoCode          string
	DiscountPercentage int64
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": FormatMinorUnits,
}).Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f6f6f6;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:24px;">
    <h1 style="font-size:20px;color:#111;">Thank you for your order!</h1>
    <p style="color:#444;">Order <strong>{{.OrderNumber}}</strong> is confirmed and being prepared.</p>
    <table width="100%" cellpadding="0" cellspacing="0" style="border-collapse:collapse;">
      {{range .Lines}}
      <tr style="border-bottom:1px solid #eee;">
        <td style="padding:12px 0;width:72px;">
          {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}" width="64" height="64" style="border-radius:4px;object-fit:cover;">{{end}}
        </td>
        <td style="padding:12px;color:#111;">
          {{.Name}}
          {{if .SelectedSize}}<br><span style="color:#777;font-size:12px;">Size: {{.SelectedSize}}</span>{{end}}
          {{if .SelectedLength}}<br><span style="color:#777;font-size:12px;">Length: {{.SelectedLength}}</span>{{end}}
        </td>
        <td style="padding:12px 0;text-align:right;color:#111;">${{money .Amount}}</td>
      </tr>
      {{end}}
      {{if .PromoCode}}
      <tr>
        <td colspan="2" style="padding:12px;color:#2e7d32;">Promo {{.PromoCode}} ({{.DiscountPercentage}}% off) applied</td>
        <td></td>
      </tr>
      {{end}}
      <tr>
        <td colspan="2" style="padding:12px;font-weight:bold;color:#111;">Total</td>
        <td style="padding:12px 0;text-align:right;font-weight:bold;color:#111;">${{money .TotalAmount}}</td>
      </tr>
    </table>
    <p style="color:#777;font-size:12px;">Questions? Just reply to this email.</p>
  </div>
</body>
</html>`))

// RenderConfirmation renders the order-confirmation HTML body.
func RenderConfirmation(c Confirmation) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}

// FormatMinorUnits renders an amount of minor units (cents) as a decimal
// string with two places, e.g. 8500 -> "85.00".
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
