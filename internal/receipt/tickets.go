package receipt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/burgerboard/api/internal/enum"
	"github.com/burgerboard/api/internal/order"
)

// Kind selects which printer a ticket is laid out for.
type Kind string

const (
	Kitchen Kind = enum.TicketKitchen
	Cashier Kind = enum.TicketCashier
)

// Valid reports whether k names a known printer.
func (k Kind) Valid() bool {
	return k == Kitchen || k == Cashier
}

func (k Kind) header() string {
	if k == Kitchen {
		return "COCINA"
	}
	return "CAJA"
}

func orderTitle(number int32) string {
	return "PEDIDO #" + strconv.Itoa(int(number))
}

// NewOrderTicket renders the ticket printed when an order arrives (or is reprinted).
// The kitchen copy carries only what has to be cooked.
func NewOrderTicket(kind Kind, o order.Order) []byte {
	s := &stream{}
	s.cmd(alignCenter, sizeDouble)
	s.bold(kind.header())
	s.rule()
	s.bold(orderTitle(o.OrderNumber))
	s.rule()
	s.feed(1)

	if kind == Kitchen {
		for _, it := range o.Items {
			s.feed(1)
			kitchenItem(s, it)
		}
		rawText(s, o)
		s.feed(3).cmd(cutPaper)
		return s.bytes()
	}

	customerBlock(s, o, order.FieldChanges{})
	s.feed(1).rule().feed(1)
	for _, it := range o.Items {
		cashierItem(s, it, "")
	}
	rawText(s, o)
	s.rule().feed(1)
	s.bold("TOTAL: " + FormatMoney(o.Monto))
	s.feed(1)
	s.line("Pago: " + o.MetodoPago)
	s.feed(3).cmd(cutPaper)
	return s.bytes()
}

// ModificationTicket renders the ticket for an edit. The kitchen copy lists
// only what to remove and what to add, and is suppressed (ok=false) when the
// edit did not touch any item. The cashier copy is always produced and lists
// the full current order.
func ModificationTicket(kind Kind, o order.Order, c order.Change) (ticket []byte, ok bool) {
	if kind == Kitchen && !c.HasChanges() {
		return nil, false
	}

	s := &stream{}
	s.cmd(alignCenter, sizeDouble)
	s.bold(kind.header())
	s.feed(1)
	s.line("MODIFICACION")
	s.rule()
	s.bold(orderTitle(o.OrderNumber))
	s.cmd(sizeMedium)
	s.rule()
	s.feed(1)

	if kind == Kitchen {
		if len(c.Removed) > 0 {
			s.bold("QUITAR:")
			s.feed(1)
			for _, it := range c.Removed {
				kitchenItem(s, it)
			}
		}
		if len(c.Added) > 0 {
			s.bold("AGREGAR:")
			s.feed(1)
			for _, it := range c.Added {
				kitchenItem(s, it)
			}
		}
		s.feed(5).cmd(cutPaper)
		return s.bytes(), true
	}

	customerBlock(s, o, c.FieldChanges)
	s.line("Pago: " + o.MetodoPago + flag(c.PaymentChanged))
	s.feed(1).rule().feed(1)

	s.bold("PEDIDO COMPLETO:")
	s.feed(1)
	for _, it := range o.Items {
		marker := ""
		if order.Contains(c.Added, it) {
			marker = " (NUEVA)"
		}
		cashierItem(s, it, marker)
	}
	for _, it := range c.Removed {
		cashierItem(s, it, " (CANCELADA)")
	}

	s.rule().feed(1)
	s.bold("TOTAL: " + FormatMoney(o.Monto))
	s.feed(5).cmd(cutPaper)
	return s.bytes(), true
}

// CancellationTicket renders the oversized notice printed when an order is deleted.
func CancellationTicket(kind Kind, number int32, nombre string) []byte {
	s := &stream{}
	s.cmd(alignCenter, boldOn, sizeDouble)
	s.line(kind.header()).feed(1)
	s.line(orderTitle(number)).feed(1)
	s.line("*** CANCELADO ***").feed(1)
	s.cmd(boldOff, sizeNormal, alignLeft)
	s.line("Cliente: " + nombre)
	s.feed(5).cmd(cutPaper)
	return s.bytes()
}

func kitchenItem(s *stream, it order.Item) {
	s.line(fmt.Sprintf("%dx %s", it.Qty(), it.BurgerType))
	s.text(it.PattySize)
	if it.Combo {
		s.feed(1).text("(combo)")
	}
	s.feed(1)
	modifiers(s, it)
	s.feed(1)
}

func cashierItem(s *stream, it order.Item, marker string) {
	s.line(fmt.Sprintf("%dx %s", it.Qty(), it.BurgerType))
	s.text(it.PattySize)
	if it.Combo {
		s.text(" (combo)")
	}
	s.line(marker)
	modifiers(s, it)
	if it.Price != nil {
		s.feed(1).line(FormatMoney(*it.Price))
	}
	s.feed(1)
}

func modifiers(s *stream, it order.Item) {
	if len(it.Additions) > 0 {
		s.feed(1).line("+ " + strings.Join(it.Additions, ", "))
	}
	if len(it.Removals) > 0 {
		s.feed(1).line("- " + strings.Join(it.Removals, ", "))
	}
}

func customerBlock(s *stream, o order.Order, fc order.FieldChanges) {
	s.line("Cliente: " + o.Nombre)
	if o.Telefono != "" {
		s.feed(1).line("Tel: " + o.Telefono + flag(fc.PhoneChanged))
	}
	if o.DireccionEnvio != "" {
		s.feed(1).line("Entrega:")
		s.line(o.DireccionEnvio + flag(fc.AddressChanged))
	}
	s.feed(1)
}

// rawText prints the original free text when it could not be parsed into items.
func rawText(s *stream, o order.Order) {
	if len(o.Items) > 0 || o.PedidoTexto == "" {
		return
	}
	for _, l := range strings.Split(o.PedidoTexto, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			s.line(l)
		}
	}
	s.feed(1)
}

func flag(changed bool) string {
	if changed {
		return " (NUEVO)"
	}
	return ""
}
