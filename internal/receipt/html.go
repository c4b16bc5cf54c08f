package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/burgerboard/api/internal/order"
)

// HTML tickets mirror the ESC/POS layouts for printing from a browser dialog.

var htmlTicket = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Header}} - Pedido #{{.OrderNumber}}</title>
<style>
  @page { size: 80mm auto; margin: 0; }
  body { font-family: 'Courier New', monospace; width: 72mm; margin: 4mm; font-size: 13px; }
  .center { text-align: center; }
  .header { font-size: 22px; font-weight: bold; }
  .notice { font-size: 20px; font-weight: bold; margin: 8px 0; }
  .rule { border-top: 2px dashed #000; margin: 6px 0; }
  .item { margin: 6px 0; }
  .item .name { font-weight: bold; }
  .marker { font-weight: bold; }
  .total { font-size: 16px; font-weight: bold; }
</style>
</head>
<body>
<div class="center">
  <div class="header">{{.Header}}</div>
  {{if .Subtitle}}<div>{{.Subtitle}}</div>{{end}}
  <div class="rule"></div>
  <div class="header">PEDIDO #{{.OrderNumber}}</div>
  <div class="rule"></div>
  {{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}
</div>
{{if .ShowCustomer}}
<div>Cliente: {{.Nombre}}</div>
{{if .Telefono}}<div>Tel: {{.Telefono}}</div>{{end}}
{{if .Direccion}}<div>Entrega: {{.Direccion}}</div>{{end}}
{{if .MetodoPago}}<div>Pago: {{.MetodoPago}}</div>{{end}}
<div class="rule"></div>
{{end}}
{{range .Sections}}
{{if .Heading}}<div class="marker">{{.Heading}}</div>{{end}}
{{range .Lines}}
<div class="item">
  <div class="name">{{.Title}}{{if .Marker}} <span class="marker">{{.Marker}}</span>{{end}}</div>
  {{range .Details}}<div>{{.}}</div>{{end}}
  {{if .Price}}<div>{{.Price}}</div>{{end}}
</div>
{{end}}
{{end}}
{{range .RawText}}<div>{{.}}</div>{{end}}
{{if .Total}}
<div class="rule"></div>
<div class="total">TOTAL: {{.Total}}</div>
{{end}}
</body>
</html>
`))

type htmlView struct {
	Header       string
	Subtitle     string
	Notice       string
	OrderNumber  int32
	ShowCustomer bool
	Nombre       string
	Telefono     string
	Direccion    string
	MetodoPago   string
	Sections     []htmlSection
	RawText      []string
	Total        string
}

type htmlSection struct {
	Heading string
	Lines   []htmlLine
}

type htmlLine struct {
	Title   string
	Marker  string
	Details []string
	Price   string
}

func toHTMLLine(it order.Item, marker string, withPrice bool) htmlLine {
	l := htmlLine{Title: fmt.Sprintf("%dx %s %s", it.Qty(), it.BurgerType, it.PattySize), Marker: marker}
	if it.Combo {
		l.Title += " (combo)"
	}
	if len(it.Additions) > 0 {
		l.Details = append(l.Details, "+ "+strings.Join(it.Additions, ", "))
	}
	if len(it.Removals) > 0 {
		l.Details = append(l.Details, "- "+strings.Join(it.Removals, ", "))
	}
	if withPrice && it.Price != nil {
		l.Price = FormatMoney(*it.Price)
	}
	return l
}

func customerView(v *htmlView, o order.Order, fc order.FieldChanges) {
	v.ShowCustomer = true
	v.Nombre = o.Nombre
	if o.Telefono != "" {
		v.Telefono = o.Telefono + flag(fc.PhoneChanged)
	}
	if o.DireccionEnvio != "" {
		v.Direccion = o.DireccionEnvio + flag(fc.AddressChanged)
	}
	v.MetodoPago = o.MetodoPago + flag(fc.PaymentChanged)
	v.Total = FormatMoney(o.Monto)
}

func renderHTML(v htmlView) (string, error) {
	var buf bytes.Buffer
	if err := htmlTicket.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render html ticket: %w", err)
	}
	return buf.String(), nil
}

// NewOrderHTML renders the new-order ticket as a printable page.
func NewOrderHTML(kind Kind, o order.Order) (string, error) {
	v := htmlView{Header: kind.header(), OrderNumber: o.OrderNumber}
	sec := htmlSection{}
	for _, it := range o.Items {
		sec.Lines = append(sec.Lines, toHTMLLine(it, "", kind == Cashier))
	}
	v.Sections = []htmlSection{sec}
	if len(o.Items) == 0 && o.PedidoTexto != "" {
		v.RawText = strings.Split(o.PedidoTexto, "\n")
	}
	if kind == Cashier {
		customerView(&v, o, order.FieldChanges{})
	}
	return renderHTML(v)
}

// ModificationHTML renders an edit ticket as a printable page. Like
// ModificationTicket, the kitchen page is suppressed when no item changed.
func ModificationHTML(kind Kind, o order.Order, c order.Change) (string, bool, error) {
	if kind == Kitchen && !c.HasChanges() {
		return "", false, nil
	}
	v := htmlView{Header: kind.header(), Subtitle: "MODIFICACION", OrderNumber: o.OrderNumber}

	if kind == Kitchen {
		if len(c.Removed) > 0 {
			sec := htmlSection{Heading: "QUITAR:"}
			for _, it := range c.Removed {
				sec.Lines = append(sec.Lines, toHTMLLine(it, "", false))
			}
			v.Sections = append(v.Sections, sec)
		}
		if len(c.Added) > 0 {
			sec := htmlSection{Heading: "AGREGAR:"}
			for _, it := range c.Added {
				sec.Lines = append(sec.Lines, toHTMLLine(it, "", false))
			}
			v.Sections = append(v.Sections, sec)
		}
		html, err := renderHTML(v)
		return html, err == nil, err
	}

	customerView(&v, o, c.FieldChanges)
	sec := htmlSection{Heading: "PEDIDO COMPLETO:"}
	for _, it := range o.Items {
		marker := ""
		if order.Contains(c.Added, it) {
			marker = "(NUEVA)"
		}
		sec.Lines = append(sec.Lines, toHTMLLine(it, marker, true))
	}
	for _, it := range c.Removed {
		sec.Lines = append(sec.Lines, toHTMLLine(it, "(CANCELADA)", false))
	}
	v.Sections = []htmlSection{sec}
	html, err := renderHTML(v)
	return html, err == nil, err
}

// CancellationHTML renders the cancellation notice as a printable page.
func CancellationHTML(kind Kind, number int32, nombre string) (string, error) {
	return renderHTML(htmlView{
		Header:       kind.header(),
		OrderNumber:  number,
		Notice:       "*** CANCELADO ***",
		ShowCustomer: true,
		Nombre:       nombre,
	})
}
