package webhook

import (
	"github.com/burgerboard/api/internal/order"
	"github.com/burgerboard/api/internal/receipt"
	"github.com/shopspring/decimal"
)

const (
	typeCancel       = "cancel"
	tipoModificacion = "modificacion"
)

// Payload is the JSON body posted to a print destination. Ticket carries
// the base64 ESC/POS stream; the remaining fields let the printer bridge
// log or re-render without decoding it.
type Payload struct {
	OrderNumber int32        `json:"order_number"`
	Ticket      string       `json:"ticket"`
	Nombre      string       `json:"nombre"`
	Items       []order.Item `json:"items,omitempty"`
	Type        string       `json:"type,omitempty"`

	// Cashier copy only.
	Telefono       string           `json:"telefono,omitempty"`
	DireccionEnvio string           `json:"direccion_envio,omitempty"`
	Monto          *decimal.Decimal `json:"monto,omitempty"`
	MetodoPago     string           `json:"metodo_pago,omitempty"`

	*Modification
	*order.FieldChanges
}

// Modification describes an item delta on edit payloads.
type Modification struct {
	ItemsAdded   []order.Item `json:"items_added"`
	ItemsRemoved []order.Item `json:"items_removed"`
	IsSwap       bool         `json:"is_swap"`
	Tipo         string       `json:"tipo"`
}

// NewOrderPayloads builds the kitchen and cashier payloads for a fresh order.
func NewOrderPayloads(o order.Order) (*Payload, Payload) {
	kitchen := &Payload{
		OrderNumber: o.OrderNumber,
		Ticket:      receipt.Encode(receipt.NewOrderTicket(receipt.Kitchen, o)),
		Nombre:      o.Nombre,
		Items:       o.Items,
	}
	cashier := cashierPayload(o, receipt.NewOrderTicket(receipt.Cashier, o))
	return kitchen, cashier
}

// ModificationPayloads builds the payloads for an edit. The kitchen payload
// is nil when the edit touched no items.
func ModificationPayloads(o order.Order, c order.Change) (*Payload, Payload) {
	mod := &Modification{
		ItemsAdded:   nonNil(c.Added),
		ItemsRemoved: nonNil(c.Removed),
		IsSwap:       c.IsSwap,
		Tipo:         tipoModificacion,
	}

	var kitchen *Payload
	if ticket, ok := receipt.ModificationTicket(receipt.Kitchen, o, c); ok {
		kitchen = &Payload{
			OrderNumber:  o.OrderNumber,
			Ticket:       receipt.Encode(ticket),
			Nombre:       o.Nombre,
			Items:        o.Items,
			Modification: mod,
		}
	}

	ticket, _ := receipt.ModificationTicket(receipt.Cashier, o, c)
	cashier := cashierPayload(o, ticket)
	cashier.Modification = mod
	fc := c.FieldChanges
	cashier.FieldChanges = &fc

	return kitchen, cashier
}

// CancellationPayloads builds the payloads announcing a deleted order.
func CancellationPayloads(number int32, nombre string) (*Payload, Payload) {
	kitchen := &Payload{
		OrderNumber: number,
		Ticket:      receipt.Encode(receipt.CancellationTicket(receipt.Kitchen, number, nombre)),
		Nombre:      nombre,
		Type:        typeCancel,
	}
	cashier := Payload{
		OrderNumber: number,
		Ticket:      receipt.Encode(receipt.CancellationTicket(receipt.Cashier, number, nombre)),
		Nombre:      nombre,
		Type:        typeCancel,
	}
	return kitchen, cashier
}

func cashierPayload(o order.Order, ticket []byte) Payload {
	monto := o.Monto
	return Payload{
		OrderNumber:    o.OrderNumber,
		Ticket:         receipt.Encode(ticket),
		Nombre:         o.Nombre,
		Items:          o.Items,
		Telefono:       o.Telefono,
		DireccionEnvio: o.DireccionEnvio,
		Monto:          &monto,
		MetodoPago:     o.MetodoPago,
	}
}

func nonNil(items []order.Item) []order.Item {
	if items == nil {
		return []order.Item{}
	}
	return items
}
