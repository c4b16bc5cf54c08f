package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the canonical order document shared by the API, tickets and the change feed.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    int32           `json:"order_number"`
	Nombre         string          `json:"nombre"`
	Telefono       string          `json:"telefono,omitempty"`
	Items          []Item          `json:"items"`
	ItemStatus     []ItemStatus    `json:"item_status"`
	Monto          decimal.Decimal `json:"monto"`
	DireccionEnvio string          `json:"direccion_envio,omitempty"`
	MetodoPago     string          `json:"metodo_pago"`
	Status         string          `json:"status"`
	CadeteSalio    bool            `json:"cadete_salio"`
	PedidoTexto    string          `json:"pedido_texto,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Age returns how long ago the order was created.
func (o Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}
