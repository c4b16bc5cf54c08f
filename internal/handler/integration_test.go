//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/burgerboard/api/internal/config"
	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/events"
	"github.com/burgerboard/api/internal/router"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/burgerboard/api/internal/ws"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegrationFlow exercises the chat pipeline and the boards against a
// real PostgreSQL database, with both printers stubbed by httptest servers.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start PostgreSQL container
	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations
	runMigrations(t, connStr)

	// Create pgxpool connection
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	kitchen := newPrinter(t)
	cashier := newPrinter(t)

	cfg := &config.Config{
		Port:              "8081",
		DatabaseURL:       connStr,
		Location:          time.UTC,
		KitchenWebhookURL: kitchen.URL,
		CashierWebhookURL: cashier.URL,
		WebhookTimeout:    5 * time.Second,
		DeleteGraceWindow: 15 * time.Minute,
		RateLimitRPS:      100,
		RateLimitBurst:    100,
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	go hub.Run(ctx)

	r := router.New(cfg, queries, pool, hub, router.Deps{
		Notifier: webhook.NewDispatcher(webhook.Config{
			KitchenURL: cfg.KitchenWebhookURL,
			CashierURL: cfg.CashierWebhookURL,
			Timeout:    cfg.WebhookTimeout,
		}),
		Publisher: events.NewFanout().Add("websocket", events.NewHubPublisher(hub)),
	})

	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Intake from chat text ---
	first := post(t, server, "/receive-order", map[string]interface{}{
		"nombre":          "Juan",
		"telefono":        "1155550000",
		"direccion_envio": "Av. Siempre Viva 742",
		"monto":           "15000",
		"pedido":          "2 ruby clove doble combo sin cebolla",
	}, http.StatusOK)
	firstOrder := first["order"].(map[string]interface{})
	if firstOrder["order_number"] != float64(1) {
		t.Fatalf("first order_number: got %v, want 1", firstOrder["order_number"])
	}
	if items := firstOrder["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("first order items: got %d, want 1", len(items))
	}
	if _, ok := first["webhookErrors"]; ok {
		t.Fatalf("unexpected webhook errors: %v", first["webhookErrors"])
	}
	firstID := firstOrder["id"].(string)

	// --- 2. Second intake gets the next daily number ---
	second := post(t, server, "/receive-order", map[string]interface{}{
		"nombre":      "Ana",
		"monto":       9000,
		"metodo_pago": "transferencia",
		"items": []map[string]interface{}{
			{"burger_type": "cheese", "patty_size": "simple", "quantity": 1},
		},
	}, http.StatusOK)
	if n := second["order"].(map[string]interface{})["order_number"]; n != float64(2) {
		t.Fatalf("second order_number: got %v, want 2", n)
	}

	// --- 3. Edit swaps the burger on order 1 ---
	edited := post(t, server, "/edit-order", map[string]interface{}{
		"order_number": 1,
		"pedido":       "2 bbq doble combo sin cebolla",
	}, http.StatusOK)
	if edited["isSwap"] != true {
		t.Fatalf("edit isSwap: got %v, want true", edited["isSwap"])
	}

	// --- 4. Status lookup ---
	status := post(t, server, "/get-order-status", map[string]interface{}{"order_number": "1"}, http.StatusOK)
	if status["found"] != true || status["status"] != "pending" {
		t.Fatalf("order status: got %v", status)
	}

	// --- 5. Kitchen ticks the first line, then completes the order ---
	toggled := patch(t, server, "/orders/"+firstID+"/items/0", nil, http.StatusOK)
	itemStatus := toggled["item_status"].([]interface{})
	if itemStatus[0].(map[string]interface{})["completed"] != true {
		t.Fatalf("item_status[0]: got %v", itemStatus[0])
	}
	completed := patch(t, server, "/orders/"+firstID+"/status", map[string]string{"status": "completed"}, http.StatusOK)
	if completed["status"] != "completed" {
		t.Fatalf("status after complete: got %v", completed["status"])
	}
	patch(t, server, "/orders/"+firstID+"/status", map[string]string{"status": "pending"}, http.StatusConflict)

	// --- 6. Kitchen board only shows pending orders ---
	board := get(t, server, "/orders?status=pending")
	pending := board["orders"].([]interface{})
	if len(pending) != 1 || pending[0].(map[string]interface{})["nombre"] != "Ana" {
		t.Fatalf("pending board: got %v", pending)
	}

	// --- 7. Reports see both orders ---
	summary := get(t, server, "/reports/summary")
	if summary["order_count"] != float64(2) || summary["total_revenue"] != "24000.00" {
		t.Fatalf("summary: got %v", summary)
	}

	// --- 8. Delete within the grace window ---
	deleted := post(t, server, "/delete-order", map[string]interface{}{"order_number": 2}, http.StatusOK)
	if deleted["success"] != true {
		t.Fatalf("delete: got %v", deleted)
	}
	gone := post(t, server, "/get-order-status", map[string]interface{}{"order_number": 2}, http.StatusOK)
	if gone["found"] != false {
		t.Fatalf("status after delete: got %v", gone)
	}

	// --- 9. Printer traffic ---
	// kitchen: 2 new orders, 1 modification, 1 cancellation; cashier the same.
	if got := kitchen.types(); len(got) != 4 || got[3] != "cancel" {
		t.Fatalf("kitchen deliveries: got %v", got)
	}
	if got := cashier.count(); got != 4 {
		t.Fatalf("cashier deliveries: got %d, want 4", got)
	}

	t.Logf("Integration test passed: container=%s, order=%s", pgContainer.GetContainerID(), firstID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("burger_test"),
		tcpostgres.WithUsername("burger"),
		tcpostgres.WithPassword("burger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	// Connect with stdlib for migrate
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Go test sets cwd to the package directory.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// printer records every payload posted to it.
type printer struct {
	*httptest.Server
	mu       sync.Mutex
	payloads []webhook.Payload
}

func newPrinter(t *testing.T) *printer {
	t.Helper()
	p := &printer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhook.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.payloads = append(p.payloads, payload)
		p.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(p.Close)
	return p
}

func (p *printer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func (p *printer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.payloads))
	for i, pl := range p.payloads {
		switch {
		case pl.Type != "":
			out[i] = pl.Type
		case pl.Modification != nil:
			out[i] = pl.Tipo
		default:
			out[i] = "new"
		}
	}
	return out
}

// --- HTTP helpers ---

func post(t *testing.T, server *httptest.Server, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	return send(t, server, http.MethodPost, path, body, wantStatus)
}

func patch(t *testing.T, server *httptest.Server, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	return send(t, server, http.MethodPatch, path, body, wantStatus)
}

func get(t *testing.T, server *httptest.Server, path string) map[string]interface{} {
	t.Helper()
	return send(t, server, http.MethodGet, path, nil, http.StatusOK)
}

func send(t *testing.T, server *httptest.Server, method, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal %s %s: %v", method, path, err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: got %d, want %d: %v", method, path, resp.StatusCode, wantStatus, result)
	}
	return result
}
