package invoice

import (
	"bytes"
	"html/template"

	"github.com/google/uuid"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// printTemplate is a self-contained 80mm receipt document. Every render gets
// its own UUID surface id so concurrent prints never collide.
var printTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": common.FormatMinorUnits,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Snapshot.TransactionID}}</title>
<style>
  @page { size: 80mm auto; margin: 4mm; }
  body { width: 72mm; margin: 0 auto; font: 12px/1.45 "Courier New", monospace; color: #111; }
  h1 { font-size: 15px; text-align: center; margin: 0 0 2px; }
  .meta { text-align: center; font-size: 11px; margin-bottom: 6px; }
  .rule { border-top: 1px dashed #111; margin: 6px 0; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; font-size: 11px; border-bottom: 1px solid #111; padding: 2px 0; }
  td { padding: 2px 0; vertical-align: top; }
  .num { text-align: right; }
  .totals td { padding: 1px 0; }
  .grand { font-weight: bold; border-top: 1px solid #111; }
  .status { text-align: center; font-weight: bold; margin-top: 6px; text-transform: uppercase; }
  .note { font-size: 11px; margin-top: 6px; }
</style>
</head>
<body id="invoice-{{.RenderID}}">
<h1>{{.Snapshot.ShopName}}</h1>
<div class="meta">
  Invoice #{{.Snapshot.TransactionID}}<br>
  {{.IssuedAt}}<br>
  Payment: {{.Snapshot.PaymentMethod}}
  {{- if .Snapshot.CustomerPhone}}<br>Customer: {{with .Snapshot.CustomerName}}{{.}} {{end}}{{.Snapshot.CustomerPhone}}{{end}}
</div>
<div class="rule"></div>
<table>
  <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
  {{- range .Snapshot.Items}}
  <tr>
    <td>{{.ProductName}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{money .SellPricePerQuantity}}</td>
    <td class="num">{{money .TotalDiscountedAmount}}</td>
  </tr>
  {{- end}}
</table>
<div class="rule"></div>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{money .Snapshot.Subtotal}}</td></tr>
  <tr><td>Discount</td><td class="num">{{money .Snapshot.Discount}}</td></tr>
  <tr class="grand"><td>Grand Total</td><td class="num">{{money .Snapshot.GrandTotal}}</td></tr>
  <tr><td>Paid</td><td class="num">{{money .Snapshot.AmountPaid}}</td></tr>
  <tr><td>Change</td><td class="num">{{money .Snapshot.AmountChange}}</td></tr>
  <tr><td>Due</td><td class="num">{{money .Snapshot.Due}}</td></tr>
</table>
<div class="status">{{.Snapshot.PaymentStatus}}</div>
{{- with .Snapshot.Note}}
<div class="note">Note: {{.}}</div>
{{- end}}
</body>
</html>
`))

type renderData struct {
	RenderID string
	IssuedAt string
	Snapshot Snapshot
}

// Render produces the printable HTML document for a snapshot and the render
// id stamped into it.
func Render(snap Snapshot) ([]byte, string, error) {
	data := renderData{
		RenderID: uuid.NewString(),
		IssuedAt: snap.CreatedAt.Format("Monday, 2 January 2006 3:04 PM"),
		Snapshot: snap,
	}
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), data.RenderID, nil
}
