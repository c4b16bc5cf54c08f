package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

const (
	PaymentMethodEfectivo      = "efectivo"
	PaymentMethodTransferencia = "transferencia"
)

// ── Group B: Routing labels (no DB constraint) ──

const (
	TicketKitchen = "kitchen"
	TicketCashier = "cashier"
)

const (
	EventOrderCreated    = "order.created"
	EventOrderUpdated    = "order.updated"
	EventOrderCompleted  = "order.completed"
	EventOrderDispatched = "order.dispatched"
	EventOrderDeleted    = "order.deleted"
)
