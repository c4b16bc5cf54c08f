package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/burgerboard/api/internal/handler"
	"github.com/burgerboard/api/internal/order"
	"github.com/burgerboard/api/internal/service"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Mock ChatServicer ---

type mockChatService struct {
	createFn  func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	editFn    func(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error)
	deleteFn  func(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error)
	statusFn  func(ctx context.Context, orderNumber int32) (*service.OrderStatusResult, error)
	reprintFn func(ctx context.Context, o order.Order) []webhook.DeliveryError
}

func (m *mockChatService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createFn(ctx, req)
}

func (m *mockChatService) EditOrder(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error) {
	return m.editFn(ctx, req)
}

func (m *mockChatService) DeleteOrder(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error) {
	return m.deleteFn(ctx, orderNumber)
}

func (m *mockChatService) OrderStatus(ctx context.Context, orderNumber int32) (*service.OrderStatusResult, error) {
	return m.statusFn(ctx, orderNumber)
}

func (m *mockChatService) ReprintOrder(ctx context.Context, o order.Order) []webhook.DeliveryError {
	return m.reprintFn(ctx, o)
}

// --- Test helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		var b []byte
		if raw, ok := body.(string); ok {
			b = []byte(raw)
		} else {
			var err error
			b, err = json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal request: %v", err)
			}
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp
}

func setupChatRouter(svc *mockChatService) *chi.Mux {
	h := handler.NewChatHandler(svc)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func sampleOrder(number int32) order.Order {
	items := []order.Item{{BurgerType: "ruby clove", PattySize: "doble", Combo: true, Removals: []string{"cebolla"}, Quantity: 2}}
	return order.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Nombre:      "Juan",
		Items:       items,
		ItemStatus:  order.StatusFor(items),
		Monto:       decimal.NewFromInt(15000),
		MetodoPago:  "efectivo",
		Status:      "pending",
	}
}

// =====================
// POST /receive-order
// =====================

func TestReceiveOrder_Pedido(t *testing.T) {
	var got service.CreateOrderRequest
	svc := &mockChatService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			got = req
			return &service.CreateOrderResult{Order: sampleOrder(1)}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/receive-order", map[string]interface{}{
		"nombre": "Juan",
		"pedido": "2x Ruby Clove doble combo sin cebolla",
		"monto":  15000,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Input.Text != "2x Ruby Clove doble combo sin cebolla" || got.Input.Items != nil {
		t.Errorf("pedido should be passed as text: %+v", got.Input)
	}
	if !got.Monto.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("monto: got %s", got.Monto)
	}

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp["success"])
	}
	o := resp["order"].(map[string]interface{})
	if o["order_number"] != float64(1) {
		t.Errorf("order_number: got %v", o["order_number"])
	}
	if _, ok := resp["webhookErrors"]; ok {
		t.Error("webhookErrors must be omitted when every delivery succeeded")
	}
}

func TestReceiveOrder_StructuredItemsAndStringMonto(t *testing.T) {
	var got service.CreateOrderRequest
	svc := &mockChatService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			got = req
			return &service.CreateOrderResult{Order: sampleOrder(2)}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/receive-order", `{
		"nombre": "Ana",
		"items": [{"burger_type": "cheese", "patty_size": "triple", "quantity": 1}],
		"monto": "9800.50",
		"metodo_pago": "transferencia",
		"direccion_envio": "Calle 1"
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(got.Input.Items) != 1 || got.Input.Items[0].PattySize != "triple" {
		t.Errorf("unexpected items: %+v", got.Input.Items)
	}
	if got.Monto.String() != "9800.5" {
		t.Errorf("monto: got %s", got.Monto)
	}
	if got.MetodoPago != "transferencia" || got.DireccionEnvio != "Calle 1" {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestReceiveOrder_PedidoLinesAndLegacyTotal(t *testing.T) {
	var got service.CreateOrderRequest
	svc := &mockChatService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			got = req
			return &service.CreateOrderResult{Order: sampleOrder(3)}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/receive-order", map[string]interface{}{
		"nombre": "Luis",
		"pedido": []string{"1 cheese doble", "2 bacon simple"},
		"total":  12000,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(got.Input.Lines) != 2 {
		t.Errorf("pedido array should be passed as fragments: %+v", got.Input)
	}
	if !got.Monto.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("legacy total should fill monto, got %s", got.Monto)
	}
}

func TestReceiveOrder_WebhookErrorsReturned(t *testing.T) {
	svc := &mockChatService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return &service.CreateOrderResult{
				Order:         sampleOrder(4),
				WebhookErrors: []webhook.DeliveryError{{Type: "kitchen", Error: "timeout"}},
			}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/receive-order", map[string]interface{}{
		"nombre": "Juan", "pedido": "1 cheese", "monto": 1,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("webhook failure must not change the status, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	errs, ok := resp["webhookErrors"].([]interface{})
	if !ok || len(errs) != 1 {
		t.Fatalf("expected one webhook error, got %v", resp["webhookErrors"])
	}
	if errs[0].(map[string]interface{})["type"] != "kitchen" {
		t.Errorf("unexpected webhook error: %v", errs[0])
	}
}

func TestReceiveOrder_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{"invalid json", `{"nombre":`, "Invalid JSON format"},
		{"missing nombre", map[string]interface{}{"pedido": "1 cheese", "monto": 1}, "Missing required fields"},
		{"missing monto", map[string]interface{}{"nombre": "Juan", "pedido": "1 cheese"}, "Missing required fields"},
		{"missing items and pedido", map[string]interface{}{"nombre": "Juan", "monto": 1}, "Missing required fields"},
		{"items not an array", map[string]interface{}{"nombre": "Juan", "items": "1 cheese", "monto": 1}, "items must be an array"},
		{"pedido wrong type", map[string]interface{}{"nombre": "Juan", "pedido": 42, "monto": 1}, "pedido must be"},
		{"monto not numeric", map[string]interface{}{"nombre": "Juan", "pedido": "1 cheese", "monto": "mucho"}, "Invalid JSON format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{
				createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			router := setupChatRouter(svc)

			rr := doRequest(t, router, "POST", "/receive-order", tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if msg, _ := resp["error"].(string); !strings.Contains(msg, tt.wantErr) {
				t.Errorf("error: got %q, want it to contain %q", msg, tt.wantErr)
			}
		})
	}
}

func TestReceiveOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("items[0]: %w", service.ErrMissingBurgerType), http.StatusBadRequest},
		{"invalid payment", service.ErrInvalidPayment, http.StatusBadRequest},
		{"invalid patty size", fmt.Errorf("items[0]: %w", service.ErrInvalidPattySize), http.StatusBadRequest},
		{"duplicate", service.ErrDuplicateOrder, http.StatusConflict},
		{"store", errors.New("create order: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{
				createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
					return nil, tt.err
				},
			}
			router := setupChatRouter(svc)

			rr := doRequest(t, router, "POST", "/receive-order", map[string]interface{}{
				"nombre": "Juan", "pedido": "1 cheese", "monto": 1,
			})

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus == http.StatusInternalServerError {
				resp := decodeResponse(t, rr)
				if resp["details"] != "create order: connection refused" {
					t.Errorf("details: got %v", resp["details"])
				}
			}
		})
	}
}

// =====================
// POST /edit-order
// =====================

func TestEditOrder_PartialFields(t *testing.T) {
	var got service.EditOrderRequest
	svc := &mockChatService{
		editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error) {
			got = req
			return &service.EditOrderResult{
				Order:  sampleOrder(7),
				Change: order.Change{FieldChanges: order.FieldChanges{AddressChanged: true}},
			}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/edit-order", `{"order_number": "7", "direccion_envio": "Calle 2"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.OrderNumber != 7 {
		t.Errorf("order_number: got %d", got.OrderNumber)
	}
	if got.DireccionEnvio == nil || *got.DireccionEnvio != "Calle 2" {
		t.Errorf("direccion_envio not passed: %v", got.DireccionEnvio)
	}
	if got.Nombre != nil || got.Telefono != nil || got.MetodoPago != nil || got.Monto != nil || got.Input != nil {
		t.Errorf("absent fields must stay nil: %+v", got)
	}

	resp := decodeResponse(t, rr)
	for _, key := range []string{"added", "removed", "isSwap"} {
		if _, ok := resp[key]; ok {
			t.Errorf("%s must be omitted for a field-only edit", key)
		}
	}
}

func TestEditOrder_ItemsReturnsDelta(t *testing.T) {
	svc := &mockChatService{
		editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error) {
			if req.Input == nil || req.Input.Text != "1 bacon doble" {
				t.Errorf("unexpected input: %+v", req.Input)
			}
			return &service.EditOrderResult{
				Order: sampleOrder(7),
				Change: order.Change{DiffResult: order.DiffResult{
					Added:   []order.Item{{BurgerType: "bacon", PattySize: "doble", Quantity: 1}},
					Removed: []order.Item{{BurgerType: "cheese", PattySize: "doble", Quantity: 1}},
					IsSwap:  true,
				}},
			}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/edit-order", map[string]interface{}{
		"order_number": 7,
		"pedido":       "1 bacon doble",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["isSwap"] != true {
		t.Errorf("isSwap: got %v", resp["isSwap"])
	}
	if added := resp["added"].([]interface{}); len(added) != 1 {
		t.Errorf("added: got %v", added)
	}
}

func TestEditOrder_NoItemChangeHasEmptyLists(t *testing.T) {
	svc := &mockChatService{
		editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error) {
			return &service.EditOrderResult{Order: sampleOrder(7)}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/edit-order", map[string]interface{}{
		"order_number": 7,
		"items":        []map[string]interface{}{{"burger_type": "ruby clove", "patty_size": "doble", "combo": true, "quantity": 2}},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"added":[]`) || !strings.Contains(rr.Body.String(), `"removed":[]`) {
		t.Errorf("expected empty delta lists, got %s", rr.Body.String())
	}
}

func TestEditOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
	}{
		{"missing order_number", map[string]interface{}{"nombre": "X"}, nil, http.StatusBadRequest},
		{"non numeric order_number", map[string]interface{}{"order_number": "siete"}, nil, http.StatusBadRequest},
		{"not found", map[string]interface{}{"order_number": 9}, service.ErrOrderNotFound, http.StatusNotFound},
		{"unparsable pedido", map[string]interface{}{"order_number": 9, "pedido": "sin cebolla"}, service.ErrUnparsableItems, http.StatusBadRequest},
		{"store error", map[string]interface{}{"order_number": 9}, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{
				editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error) {
					if tt.err == nil {
						t.Fatal("service must not be called")
					}
					return nil, tt.err
				},
			}
			router := setupChatRouter(svc)

			rr := doRequest(t, router, "POST", "/edit-order", tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

// =====================
// POST /delete-order
// =====================

func TestDeleteOrder_Success(t *testing.T) {
	svc := &mockChatService{
		deleteFn: func(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error) {
			return &service.DeleteOrderResult{OrderNumber: orderNumber}, nil
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/delete-order", map[string]interface{}{"order_number": 5})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["success"] != true || resp["order_number"] != float64(5) || resp["message"] != "Order deleted successfully" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestDeleteOrder_GraceWindowExpired(t *testing.T) {
	svc := &mockChatService{
		deleteFn: func(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error) {
			return nil, fmt.Errorf("%w (created 20m0s ago)", service.ErrGraceWindowExpired)
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/delete-order", map[string]interface{}{"order_number": 5})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "Cannot delete order" {
		t.Errorf("error: got %v", resp["error"])
	}
	if details, _ := resp["details"].(string); !strings.Contains(details, "20m0s") {
		t.Errorf("details should explain the age, got %q", details)
	}
}

func TestDeleteOrder_NotFound(t *testing.T) {
	svc := &mockChatService{
		deleteFn: func(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error) {
			return nil, service.ErrOrderNotFound
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/delete-order", map[string]interface{}{"order_number": 5})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

// =====================
// POST /get-order-status
// =====================

func TestGetOrderStatus(t *testing.T) {
	svc := &mockChatService{
		statusFn: func(ctx context.Context, orderNumber int32) (*service.OrderStatusResult, error) {
			if orderNumber == 3 {
				return &service.OrderStatusResult{OrderNumber: 3, Message: "No se encontró el pedido #3 de hoy"}, nil
			}
			return &service.OrderStatusResult{
				Found:       true,
				OrderNumber: orderNumber,
				Status:      "completed",
				Nombre:      "Juan",
				Message:     "El pedido #8 está listo pero el cadete aún no salió",
			}, nil
		},
	}
	router := setupChatRouter(svc)

	t.Run("found", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/get-order-status", map[string]interface{}{"order_number": 8})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := decodeResponse(t, rr)
		if resp["found"] != true || resp["status"] != "completed" || resp["cadete_salio"] != false {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("not found is 200", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/get-order-status", map[string]interface{}{"order_number": 3})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := decodeResponse(t, rr)
		if resp["found"] != false || resp["message"] != "No se encontró el pedido #3 de hoy" {
			t.Errorf("unexpected response: %v", resp)
		}
		if _, ok := resp["status"]; ok {
			t.Error("status must be omitted when the order is not found")
		}
	})

	t.Run("missing order_number", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/get-order-status", map[string]interface{}{})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

// =====================
// POST /print-order
// =====================

func TestPrintOrder(t *testing.T) {
	var got order.Order
	svc := &mockChatService{
		reprintFn: func(ctx context.Context, o order.Order) []webhook.DeliveryError {
			got = o
			return []webhook.DeliveryError{{Type: "cashier", Error: "status 502"}}
		},
	}
	router := setupChatRouter(svc)

	rr := doRequest(t, router, "POST", "/print-order", sampleOrder(11))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.OrderNumber != 11 || len(got.Items) != 1 {
		t.Errorf("order not passed through: %+v", got)
	}
	resp := decodeResponse(t, rr)
	if resp["order_number"] != float64(11) {
		t.Errorf("order_number: got %v", resp["order_number"])
	}
	if errs := resp["webhookErrors"].([]interface{}); len(errs) != 1 {
		t.Errorf("expected one webhook error, got %v", errs)
	}
}

func TestPrintOrder_MissingNumber(t *testing.T) {
	router := setupChatRouter(&mockChatService{})

	rr := doRequest(t, router, "POST", "/print-order", map[string]interface{}{"nombre": "Juan"})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
