package service

import (
	"bytes"
	"fmt"
	"text/template"

	"decor-storefront/internal/model"
)

// invoiceTemplate renders the persisted snapshot only. No clock, no
// lookups: the same record always produces the same bytes.
var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.ID}}</title></head>
<body>
<h1>{{if eq .Kind "RENTAL"}}Rental Agreement{{else}}Invoice{{end}} {{.ID}}</h1>
<p>Issued {{.CreatedAt.UTC.Format "2006-01-02"}}</p>
<p>{{.CustomerName}} &lt;{{.CustomerEmail}}&gt;<br>{{.BillingAddress}}</p>
<p>Ship to: {{.ShippingAddress}}</p>
<table border="1" cellpadding="4">
<tr><th>Item</th><th>Qty</th><th>Unit</th><th>Total</th></tr>
{{- range .Lines}}
<tr>
<td>{{.Name}}{{range .Customizations}}<br><small>{{.Name}}: {{.Value}} (+{{.Surcharge.StringFixed 2}})</small>{{end}}{{if .Days}}<br><small>{{.RentalStart.UTC.Format "2006-01-02"}} to {{.RentalEnd.UTC.Format "2006-01-02"}}, {{.Days}} day(s) @ {{.DailyRate.StringFixed 2}}/day</small>{{end}}</td>
<td>{{.Quantity}}</td>
<td>{{.UnitPrice.StringFixed 2}}</td>
<td>{{.LineTotal.StringFixed 2}}</td>
</tr>
{{- end}}
</table>
<p>
Subtotal: {{.Subtotal.StringFixed 2}} {{.Currency}}<br>
{{- if eq .Kind "RENTAL"}}
Deposit: {{.Deposit.StringFixed 2}} {{.Currency}}<br>
{{- else}}
Tax: {{.Tax.StringFixed 2}} {{.Currency}}<br>
{{- end}}
<b>Total: {{.Total.StringFixed 2}} {{.Currency}}</b>
</p>
</body>
</html>
`))

// InvoiceRenderer is a pure transformation of a fulfillment record
// into a document. It neither mutates state nor performs I/O.
type InvoiceRenderer struct{}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{}
}

func (r *InvoiceRenderer) Render(record *model.FulfillmentRecord) ([]byte, error) {
	if err := validateSnapshot(record); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, record); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceRender, err)
	}

	return buf.Bytes(), nil
}

func validateSnapshot(record *model.FulfillmentRecord) error {
	if len(record.Lines) == 0 {
		return fmt.Errorf("%w: record %q has no lines", ErrInvoiceRender, record.ID)
	}
	if record.Currency == "" {
		return fmt.Errorf("%w: record %q has no currency", ErrInvoiceRender, record.ID)
	}
	for _, line := range record.Lines {
		if line.Days > 0 && (line.RentalStart == nil || line.RentalEnd == nil) {
			return fmt.Errorf("%w: rental line %q has no window", ErrInvoiceRender, line.ProductID)
		}
	}
	return nil
}
