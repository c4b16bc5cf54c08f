package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/burgerboard/api/internal/config"
	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/events"
	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/service"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type sampleOrder struct {
	nombre    string
	telefono  string
	direccion string
	pago      string
	monto     int64
	pedido    string
}

// Demo orders for the kitchen board, written the way customers type them in chat.
var samples = []sampleOrder{
	{"Juan", "1155550000", "Av. Siempre Viva 742", "efectivo", 15000, "2 ruby clove doble combo sin cebolla"},
	{"Ana", "1155551111", "", "transferencia", 9000, "1 cheese simple con extra bacon\n1 clasica simple"},
	{"Pedro", "", "Calle Falsa 123", "efectivo", 21000, "3 bbq triple combo, sin pepinos y sin tomate"},
	{"Lucía", "1155552222", "", "efectivo", 7500, "1 veggie doble combo"},
	{"Marta", "1155553333", "Belgrano 550", "transferencia", 12500, "1 ruby clove triple\n1 cheese doble sin cebolla"},
}

// noopNotifier keeps seeded orders off the printers.
type noopNotifier struct{}

func (noopNotifier) Dispatch(context.Context, *webhook.Payload, webhook.Payload) []webhook.DeliveryError {
	return nil
}

func main() {
	force := flag.Bool("force", false, "Seed even if today already has orders")
	printTickets := flag.Bool("print", false, "Send the seeded tickets to the configured printer webhooks")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("unable to ping database", zap.Error(err))
	}
	log.Info("connected to database")

	queries := database.New(pool)

	// Skip when the board already has data for today
	n, err := countToday(ctx, queries, cfg.Location)
	if err != nil {
		log.Fatal("check existing orders", zap.Error(err))
	}
	if n > 0 && !*force {
		log.Info("orders already exist for today, skipping (use -force to seed anyway)", zap.Int("existing", n))
		return
	}

	var notifier service.Notifier = noopNotifier{}
	if *printTickets {
		notifier = webhook.NewDispatcher(webhook.Config{
			KitchenURL: cfg.KitchenWebhookURL,
			CashierURL: cfg.CashierWebhookURL,
			Timeout:    cfg.WebhookTimeout,
		})
	}

	svc := service.NewOrderService(pool, queries, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, notifier, events.NewFanout(), service.Options{Location: cfg.Location})

	for _, s := range samples {
		res, err := svc.CreateOrder(ctx, service.CreateOrderRequest{
			Nombre:         s.nombre,
			Telefono:       s.telefono,
			DireccionEnvio: s.direccion,
			MetodoPago:     s.pago,
			Monto:          decimal.NewFromInt(s.monto),
			Input:          service.ItemsInput{Text: s.pedido},
		})
		if err != nil {
			log.Fatal("seed order", zap.String("nombre", s.nombre), zap.Error(err))
		}
		for _, we := range res.WebhookErrors {
			log.Warn("ticket not printed", zap.Int32("order_number", res.Order.OrderNumber), zap.String("type", we.Type), zap.String("error", we.Error))
		}
		log.Info("created order",
			zap.Int32("order_number", res.Order.OrderNumber),
			zap.String("nombre", res.Order.Nombre),
			zap.Int("items", len(res.Order.Items)),
		)
	}

	fmt.Printf("Seeded %d orders\n", len(samples))
}

func countToday(ctx context.Context, q *database.Queries, loc *time.Location) (int, error) {
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	rows, err := q.ListOrders(ctx, database.ListOrdersParams{
		StartAt: pgtype.Timestamptz{Time: start, Valid: true},
		EndAt:   pgtype.Timestamptz{Time: start.AddDate(0, 0, 1), Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("list orders: %w", err)
	}
	return len(rows), nil
}
