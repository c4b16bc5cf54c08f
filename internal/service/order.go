package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/enum"
	"github.com/burgerboard/api/internal/events"
	"github.com/burgerboard/api/internal/idempotency"
	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/order"
	"github.com/burgerboard/api/internal/order/parser"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrMissingNombre       = errors.New("nombre is required")
	ErrEmptyOrder          = errors.New("items or pedido is required")
	ErrInvalidMonto        = errors.New("monto must be >= 0")
	ErrInvalidPayment      = errors.New("invalid metodo_pago")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrMissingBurgerType   = errors.New("burger_type is required")
	ErrInvalidPattySize    = errors.New("patty_size must be simple, doble or triple")
	ErrUnparsableItems     = errors.New("pedido could not be parsed into items")
	ErrMissingOrderNumber  = errors.New("order_number is required")
	ErrOrderNotFound       = errors.New("order not found")
	ErrGraceWindowExpired  = errors.New("order is older than the delete grace window")
	ErrDuplicateOrder      = errors.New("order already received")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrItemIndexOutOfRange = errors.New("item index out of range")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextDailyOrderNumber(ctx context.Context, orderDate pgtype.Date) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetLatestOrderByNumber(ctx context.Context, arg database.GetLatestOrderByNumberParams) (database.Order, error)
	GetLatestOrderByNumberForUpdate(ctx context.Context, arg database.GetLatestOrderByNumberForUpdateParams) (database.Order, error)
	UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateItemStatus(ctx context.Context, arg database.UpdateItemStatusParams) (database.Order, error)
	SetCadeteSalio(ctx context.Context, id uuid.UUID) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// Notifier delivers rendered tickets. Satisfied by *webhook.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, kitchen *webhook.Payload, cashier webhook.Payload) []webhook.DeliveryError
}

// EventPublisher receives one event per committed mutation.
// Satisfied by *events.Fanout.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event)
}

// IntakeGuard rejects repeated intake deliveries.
// Satisfied by *idempotency.Guard.
type IntakeGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Options tunes the order service.
type Options struct {
	// Location defines the restaurant day: order numbers restart and "today"
	// lookups begin at midnight here. Defaults to UTC.
	Location *time.Location
	// GraceWindow is how long after creation an order may still be deleted.
	GraceWindow time.Duration
	// Guard is optional.
	Guard IntakeGuard
	// Now is overridable for tests.
	Now func() time.Time
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	store       OrderStore
	newStore    NewOrderStore
	notifier    Notifier
	events      EventPublisher
	guard       IntakeGuard
	loc         *time.Location
	graceWindow time.Duration
	now         func() time.Time
}

// NewOrderService creates a new OrderService. store serves plain reads;
// newStore wraps the transactions opened on pool.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore, notifier Notifier, publisher EventPublisher, opts Options) *OrderService {
	s := &OrderService{
		pool:        pool,
		store:       store,
		newStore:    newStore,
		notifier:    notifier,
		events:      publisher,
		guard:       opts.Guard,
		loc:         opts.Location,
		graceWindow: opts.GraceWindow,
		now:         opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.graceWindow <= 0 {
		s.graceWindow = 15 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ItemsInput carries line items in one of the accepted shapes: structured
// Items, a free-text block, or pre-split text fragments. Items wins when set.
type ItemsInput struct {
	Items []order.Item
	Text  string
	Lines []string
}

func (in ItemsInput) empty() bool {
	return in.Items == nil && strings.TrimSpace(in.Text) == "" && len(in.Lines) == 0
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	Nombre         string
	Telefono       string
	DireccionEnvio string
	MetodoPago     string
	Monto          decimal.Decimal
	Input          ItemsInput
}

// CreateOrderResult is the stored order plus advisory delivery errors.
type CreateOrderResult struct {
	Order         order.Order
	WebhookErrors []webhook.DeliveryError
}

// EditOrderRequest is a partial update. Nil fields are left untouched.
type EditOrderRequest struct {
	OrderNumber    int32
	Nombre         *string
	Telefono       *string
	DireccionEnvio *string
	MetodoPago     *string
	Monto          *decimal.Decimal
	Input          *ItemsInput
}

// EditOrderResult is the updated order and what the edit changed.
type EditOrderResult struct {
	Order         order.Order
	Change        order.Change
	WebhookErrors []webhook.DeliveryError
}

// DeleteOrderResult reports a deleted order.
type DeleteOrderResult struct {
	OrderNumber   int32
	WebhookErrors []webhook.DeliveryError
}

// OrderStatusResult answers a customer's "where is my order" question.
type OrderStatusResult struct {
	Found          bool
	OrderNumber    int32
	Status         string
	CadeteSalio    bool
	Nombre         string
	DireccionEnvio string
	Message        string
}

// ListOrdersRequest filters the board listing. A zero Date means today.
type ListOrdersRequest struct {
	Status string
	Date   time.Time
}

// CreateOrder validates and stores a new order, then notifies the printers.
// Retries up to maxOrderNumberRetries times on order_number unique constraint
// violations (concurrent transactions reading the same MAX for the day).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	// --- Validate ---
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return nil, ErrMissingNombre
	}
	if req.Monto.IsNegative() {
		return nil, ErrInvalidMonto
	}
	metodo, err := validatePaymentMethod(req.MetodoPago)
	if err != nil {
		return nil, err
	}
	if req.Input.empty() {
		return nil, ErrEmptyOrder
	}
	items, pedidoTexto, err := resolveItems(req.Input)
	if err != nil {
		return nil, err
	}

	// --- Duplicate delivery guard ---
	key := intakeKey(req, items, pedidoTexto)
	if s.guard != nil {
		ok, err := s.guard.Claim(ctx, key)
		if err != nil {
			// Fail open: a Redis outage must not stop orders coming in.
			logger.FromCtx(ctx).Warn("intake guard unavailable", zap.Error(err))
		} else if !ok {
			return nil, ErrDuplicateOrder
		}
	}

	params := database.CreateOrderParams{
		Nombre:         req.Nombre,
		Telefono:       textOrNull(req.Telefono),
		Monto:          decimalToNumeric(req.Monto),
		DireccionEnvio: textOrNull(req.DireccionEnvio),
		MetodoPago:     metodo,
		Status:         enum.OrderStatusPending,
		PedidoTexto:    textOrNull(pedidoTexto),
	}
	if params.Items, err = json.Marshal(items); err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	if params.ItemStatus, err = json.Marshal(order.StatusFor(items)); err != nil {
		return nil, fmt.Errorf("marshal item status: %w", err)
	}

	// Retry loop: handles order_number unique constraint race condition.
	var created *order.Order
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		created, lastErr = s.createOrderTx(ctx, params)
		if lastErr == nil || !isOrderNumberConflict(lastErr) {
			break
		}
	}
	if lastErr != nil {
		if s.guard != nil {
			if err := s.guard.Release(ctx, key); err != nil {
				logger.FromCtx(ctx).Warn("release intake guard", zap.Error(err))
			}
		}
		return nil, lastErr
	}

	s.events.Publish(ctx, events.New(enum.EventOrderCreated, *created))

	kitchen, cashier := webhook.NewOrderPayloads(*created)
	return &CreateOrderResult{
		Order:         *created,
		WebhookErrors: s.notifier.Dispatch(ctx, kitchen, cashier),
	}, nil
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the daily order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_date_order_number_key"
	}
	return false
}

// createOrderTx allocates the day's next number and inserts the order in one transaction.
func (s *OrderService) createOrderTx(ctx context.Context, params database.CreateOrderParams) (*order.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	params.OrderDate = s.orderDate(s.now())
	nextNum, err := store.GetNextDailyOrderNumber(ctx, params.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	params.OrderNumber = nextNum

	row, err := store.CreateOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	o, err := toOrder(row)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// EditOrder applies a partial update to today's most recent order with the
// given number. The row stays locked from read to write, so concurrent edits
// of one order apply one after the other. Printers are notified after commit,
// and only when the edit changed items, address, phone or payment method.
func (s *OrderService) EditOrder(ctx context.Context, req EditOrderRequest) (*EditOrderResult, error) {
	if req.OrderNumber <= 0 {
		return nil, ErrMissingOrderNumber
	}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) == "" {
		return nil, ErrMissingNombre
	}
	if req.Monto != nil && req.Monto.IsNegative() {
		return nil, ErrInvalidMonto
	}
	if req.MetodoPago != nil {
		if _, err := validatePaymentMethod(*req.MetodoPago); err != nil {
			return nil, err
		}
	}

	var newItems []order.Item
	var pedidoTexto string
	if req.Input != nil {
		var err error
		newItems, pedidoTexto, err = resolveItems(*req.Input)
		if err != nil {
			return nil, err
		}
		if req.Input.Items == nil && len(newItems) == 0 {
			return nil, ErrUnparsableItems
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.GetLatestOrderByNumberForUpdate(ctx, database.GetLatestOrderByNumberForUpdateParams{
		OrderNumber: req.OrderNumber,
		CreatedAt:   timestamptz(s.startOfDay(s.now())),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	existing, err := toOrder(row)
	if err != nil {
		return nil, err
	}

	updated := existing
	var change order.Change

	if req.Nombre != nil {
		updated.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Monto != nil {
		updated.Monto = *req.Monto
	}
	if req.Telefono != nil {
		telefono := strings.TrimSpace(*req.Telefono)
		change.PhoneChanged = telefono != existing.Telefono
		updated.Telefono = telefono
	}
	if req.DireccionEnvio != nil {
		direccion := strings.TrimSpace(*req.DireccionEnvio)
		change.AddressChanged = direccion != existing.DireccionEnvio
		updated.DireccionEnvio = direccion
	}
	if req.MetodoPago != nil {
		metodo, _ := validatePaymentMethod(*req.MetodoPago)
		change.PaymentChanged = metodo != existing.MetodoPago
		updated.MetodoPago = metodo
	}
	if req.Input != nil {
		change.DiffResult = order.Diff(existing.Items, newItems)
		updated.Items = newItems
		updated.ItemStatus = order.StatusFor(newItems)
		if pedidoTexto != "" {
			updated.PedidoTexto = pedidoTexto
		}
	}

	params, err := toUpdateParams(updated)
	if err != nil {
		return nil, err
	}
	row, err = store.UpdateOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	saved, err := toOrder(row)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.New(enum.EventOrderUpdated, saved))

	result := &EditOrderResult{Order: saved, Change: change}
	if change.MustNotify() {
		kitchen, cashier := webhook.ModificationPayloads(saved, change)
		result.WebhookErrors = s.notifier.Dispatch(ctx, kitchen, cashier)
	}
	return result, nil
}

// DeleteOrder removes today's most recent order with the given number while it
// is still inside the grace window. Cancellation tickets go out to both
// printers before the row is deleted; the row stays locked meanwhile so no
// edit can slip in between.
func (s *OrderService) DeleteOrder(ctx context.Context, orderNumber int32) (*DeleteOrderResult, error) {
	if orderNumber <= 0 {
		return nil, ErrMissingOrderNumber
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.GetLatestOrderByNumberForUpdate(ctx, database.GetLatestOrderByNumberForUpdateParams{
		OrderNumber: orderNumber,
		CreatedAt:   timestamptz(s.startOfDay(s.now())),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if age := s.now().Sub(row.CreatedAt.Time); age > s.graceWindow {
		return nil, fmt.Errorf("%w (created %s ago)", ErrGraceWindowExpired, age.Truncate(time.Minute))
	}

	kitchen, cashier := webhook.CancellationPayloads(row.OrderNumber, row.Nombre)
	webhookErrors := s.notifier.Dispatch(ctx, kitchen, cashier)

	if err := store.DeleteOrder(ctx, row.ID); err != nil {
		return nil, fmt.Errorf("delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.events.Publish(ctx, events.Deleted(enum.EventOrderDeleted, row.ID, row.OrderNumber))

	return &DeleteOrderResult{OrderNumber: row.OrderNumber, WebhookErrors: webhookErrors}, nil
}

// OrderStatus looks up today's most recent order with the given number.
// A missing order is a normal answer (Found=false), not an error.
func (s *OrderService) OrderStatus(ctx context.Context, orderNumber int32) (*OrderStatusResult, error) {
	if orderNumber <= 0 {
		return nil, ErrMissingOrderNumber
	}

	row, err := s.store.GetLatestOrderByNumber(ctx, database.GetLatestOrderByNumberParams{
		OrderNumber: orderNumber,
		CreatedAt:   timestamptz(s.startOfDay(s.now())),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &OrderStatusResult{
				OrderNumber: orderNumber,
				Message:     fmt.Sprintf("No se encontró el pedido #%d de hoy", orderNumber),
			}, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	res := &OrderStatusResult{
		Found:          true,
		OrderNumber:    row.OrderNumber,
		Status:         row.Status,
		CadeteSalio:    row.CadeteSalio,
		Nombre:         row.Nombre,
		DireccionEnvio: row.DireccionEnvio.String,
	}
	switch {
	case row.CadeteSalio:
		res.Message = fmt.Sprintf("El cadete ya salió con el pedido #%d", row.OrderNumber)
	case row.Status == enum.OrderStatusCompleted:
		res.Message = fmt.Sprintf("El pedido #%d está listo pero el cadete aún no salió", row.OrderNumber)
	default:
		res.Message = fmt.Sprintf("El pedido #%d está pendiente pero el cadete aún no salió", row.OrderNumber)
	}
	return res, nil
}

// ReprintOrder renders new-order tickets for o and sends them again.
// Nothing is read from or written to the store.
func (s *OrderService) ReprintOrder(ctx context.Context, o order.Order) []webhook.DeliveryError {
	kitchen, cashier := webhook.NewOrderPayloads(o)
	return s.notifier.Dispatch(ctx, kitchen, cashier)
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o, err := toOrder(row)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns the orders of one restaurant day, oldest first.
func (s *OrderService) ListOrders(ctx context.Context, req ListOrdersRequest) ([]order.Order, error) {
	status := pgtype.Text{}
	if req.Status != "" {
		if !isValidOrderStatus(req.Status) {
			return nil, ErrInvalidStatus
		}
		status = pgtype.Text{String: req.Status, Valid: true}
	}

	day := req.Date
	if day.IsZero() {
		day = s.now()
	}
	start := s.startOfDay(day)

	rows, err := s.store.ListOrders(ctx, database.ListOrdersParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(start.AddDate(0, 0, 1)),
		Status:  status,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrders(rows)
}

// UpdateStatus moves an order along its lifecycle (pending -> completed).
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next string) (*order.Order, error) {
	if !isValidOrderStatus(next) {
		return nil, ErrInvalidStatus
	}

	return s.mutate(ctx, id, enum.EventOrderCompleted, func(store OrderStore, row database.Order) (database.Order, error) {
		if err := validateStatusTransition(row.Status, next); err != nil {
			return database.Order{}, err
		}
		return store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: row.ID, Status: next})
	})
}

// ToggleItem flips the completed flag of the item at index.
func (s *OrderService) ToggleItem(ctx context.Context, id uuid.UUID, index int) (*order.Order, error) {
	if index < 0 {
		return nil, ErrItemIndexOutOfRange
	}

	return s.mutate(ctx, id, enum.EventOrderUpdated, func(store OrderStore, row database.Order) (database.Order, error) {
		o, err := toOrder(row)
		if err != nil {
			return database.Order{}, err
		}
		if index >= len(o.ItemStatus) {
			return database.Order{}, ErrItemIndexOutOfRange
		}
		o.ItemStatus[index].Completed = !o.ItemStatus[index].Completed

		raw, err := json.Marshal(o.ItemStatus)
		if err != nil {
			return database.Order{}, fmt.Errorf("marshal item status: %w", err)
		}
		return store.UpdateItemStatus(ctx, database.UpdateItemStatusParams{ID: row.ID, ItemStatus: raw})
	})
}

// MarkDispatched records that the delivery rider left with the order.
// Repeating it is a no-op.
func (s *OrderService) MarkDispatched(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.mutate(ctx, id, enum.EventOrderDispatched, func(store OrderStore, row database.Order) (database.Order, error) {
		if row.CadeteSalio {
			return row, nil
		}
		return store.SetCadeteSalio(ctx, row.ID)
	})
}

// mutate runs fn against the locked row and publishes eventType on commit.
func (s *OrderService) mutate(ctx context.Context, id uuid.UUID, eventType string, fn func(OrderStore, database.Order) (database.Order, error)) (*order.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.GetOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	updated, err := fn(store, row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	o, err := toOrder(updated)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.New(eventType, o))
	return &o, nil
}

// --- Helpers ---

// resolveItems turns the accepted input shapes into canonical items. Free
// text that yields no items produces an empty list plus the raw text, which
// tickets print instead.
func resolveItems(in ItemsInput) ([]order.Item, string, error) {
	if in.Items != nil {
		items := make([]order.Item, len(in.Items))
		for i, it := range in.Items {
			it.BurgerType = strings.TrimSpace(it.BurgerType)
			if it.BurgerType == "" {
				return nil, "", fmt.Errorf("items[%d]: %w", i, ErrMissingBurgerType)
			}
			if it.Quantity < 0 {
				return nil, "", fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
			}
			it.Quantity = it.Qty()
			it.PattySize = strings.ToLower(strings.TrimSpace(it.PattySize))
			switch it.PattySize {
			case "":
				it.PattySize = order.PattySimple
			case order.PattySimple, order.PattyDoble, order.PattyTriple:
			default:
				return nil, "", fmt.Errorf("items[%d]: %w", i, ErrInvalidPattySize)
			}
			items[i] = it
		}
		return items, "", nil
	}

	var items []order.Item
	var text string
	if len(in.Lines) > 0 {
		items = parser.ParseFragments(in.Lines)
		text = strings.Join(in.Lines, "\n")
	} else {
		items = parser.Parse(in.Text)
		text = in.Text
	}
	if items == nil {
		items = []order.Item{}
	}
	return items, strings.TrimSpace(text), nil
}

func intakeKey(req CreateOrderRequest, items []order.Item, pedidoTexto string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = order.Normalize(it).String()
	}
	return idempotency.Key(
		strings.ToLower(req.Nombre),
		req.Telefono,
		req.Monto.String(),
		strings.Join(lines, ";"),
		pedidoTexto,
	)
}

func validatePaymentMethod(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return enum.PaymentMethodEfectivo, nil
	case enum.PaymentMethodEfectivo:
		return enum.PaymentMethodEfectivo, nil
	case enum.PaymentMethodTransferencia:
		return enum.PaymentMethodTransferencia, nil
	}
	return "", ErrInvalidPayment
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusCompleted:
		return true
	}
	return false
}

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending: {enum.OrderStatusCompleted},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next string) error {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}

// startOfDay returns local midnight of t's restaurant day.
func (s *OrderService) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

func (s *OrderService) orderDate(t time.Time) pgtype.Date {
	t = t.In(s.loc)
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func toOrder(row database.Order) (order.Order, error) {
	o := order.Order{
		ID:             row.ID,
		OrderNumber:    row.OrderNumber,
		Nombre:         row.Nombre,
		Telefono:       row.Telefono.String,
		Monto:          numericToDecimal(row.Monto),
		DireccionEnvio: row.DireccionEnvio.String,
		MetodoPago:     row.MetodoPago,
		Status:         row.Status,
		CadeteSalio:    row.CadeteSalio,
		PedidoTexto:    row.PedidoTexto.String,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}

	o.Items = []order.Item{}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &o.Items); err != nil {
			return order.Order{}, fmt.Errorf("decode items of order %s: %w", row.ID, err)
		}
	}
	if len(row.ItemStatus) > 0 {
		if err := json.Unmarshal(row.ItemStatus, &o.ItemStatus); err != nil {
			return order.Order{}, fmt.Errorf("decode item_status of order %s: %w", row.ID, err)
		}
	}
	// Rows written by older clients may be out of sync; items are the source of truth.
	if len(o.ItemStatus) != len(o.Items) {
		o.ItemStatus = order.StatusFor(o.Items)
	}
	return o, nil
}

func toOrders(rows []database.Order) ([]order.Order, error) {
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		o, err := toOrder(row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func toUpdateParams(o order.Order) (database.UpdateOrderParams, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return database.UpdateOrderParams{}, fmt.Errorf("marshal items: %w", err)
	}
	itemStatus, err := json.Marshal(o.ItemStatus)
	if err != nil {
		return database.UpdateOrderParams{}, fmt.Errorf("marshal item status: %w", err)
	}
	return database.UpdateOrderParams{
		ID:             o.ID,
		Nombre:         o.Nombre,
		Telefono:       textOrNull(o.Telefono),
		Items:          items,
		ItemStatus:     itemStatus,
		Monto:          decimalToNumeric(o.Monto),
		DireccionEnvio: textOrNull(o.DireccionEnvio),
		MetodoPago:     o.MetodoPago,
		PedidoTexto:    textOrNull(o.PedidoTexto),
	}, nil
}

func textOrNull(s string) pgtype.Text {
	if s = strings.TrimSpace(s); s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
