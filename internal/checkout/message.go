package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ramdom/internal/cart"
	"ramdom/internal/format"
)

const (
	separator   = "------------------"
	paymentNote = "Forma de pago: a coordinar por este chat (transferencia o efectivo)."
)

// Snapshot freezes the cart at submission.
type Snapshot struct {
	Items []cart.LineItem
	Total decimal.Decimal
}

func SnapshotOf(c cart.Cart) Snapshot {
	return Snapshot{Items: c.Items(), Total: c.Total()}
}

type Options struct {
	Host      string
	Phone     string
	StoreName string
	Money     format.Money
}

// Format builds the order message. It depends only on its arguments.
func Format(s Snapshot, d Draft, o Options) string {
	var b strings.Builder
	line := func(parts ...string) {
		for _, p := range parts {
			b.WriteString(p)
		}
		b.WriteByte('\n')
	}
	field := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			line(label, ": ", v)
		}
	}

	line("Hola ", o.StoreName, "!!. Esta es mi consulta:")
	line()
	line("*NUEVO PEDIDO*")
	line(separator)
	for _, it := range s.Items {
		line("- ", it.Product.Name,
			" | Color: ", it.Color.Name,
			" | Talle: ", string(it.Size),
			" | x", strconv.Itoa(it.Quantity),
			" | $", o.Money.Format(it.Subtotal()))
	}
	line(separator)
	line("Total: $", o.Money.Format(s.Total))
	line()
	line("*DATOS DE ENVÍO*")
	field("Cliente", d.Name)
	field("DNI", d.DNI)
	field("Email", d.Email)
	field("Teléfono", d.Phone)
	field("Dirección", d.Address)
	field("Barrio/Zona", d.Neighborhood)
	field("Ciudad", d.City)
	field("Provincia", d.Province)
	field("CP", d.PostalCode)
	line()
	b.WriteString(paymentNote)
	return b.String()
}

// Link is the messaging deep link carrying msg, percent-encoded.
func Link(o Options, msg string) string {
	return "https://" + o.Host + "/send?phone=" + escape(o.Phone) + "&text=" + escape(msg)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
