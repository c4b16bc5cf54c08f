package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/metrics"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Destination names, also used as DeliveryError.Type.
const (
	Kitchen = "kitchen"
	Cashier = "cashier"
)

var errNotConfigured = errors.New("webhook URL not configured")

// DeliveryError reports one failed destination.
type DeliveryError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type Config struct {
	KitchenURL string
	CashierURL string
	Timeout    time.Duration
}

type destination struct {
	name string
	url  string
	cb   *breaker
}

// Dispatcher posts rendered tickets to the kitchen and cashier printers.
type Dispatcher struct {
	client  *resty.Client
	kitchen destination
	cashier destination
}

func NewDispatcher(cfg Config) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		client:  resty.New().SetTimeout(timeout).SetRetryCount(0),
		kitchen: destination{name: Kitchen, url: cfg.KitchenURL, cb: newBreaker(Kitchen)},
		cashier: destination{name: Cashier, url: cfg.CashierURL, cb: newBreaker(Cashier)},
	}
}

// Dispatch sends the cashier payload, and the kitchen payload when non-nil,
// concurrently. It waits for both and returns one DeliveryError per failed
// destination, kitchen first. A nil result means every attempted delivery
// succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, kitchen *Payload, cashier Payload) []DeliveryError {
	var (
		g       errgroup.Group
		results [2]error
	)

	if kitchen != nil {
		k := *kitchen
		g.Go(func() error {
			results[0] = d.send(ctx, d.kitchen, k)
			return nil
		})
	}
	g.Go(func() error {
		results[1] = d.send(ctx, d.cashier, cashier)
		return nil
	})
	_ = g.Wait()

	var errs []DeliveryError
	for i, err := range results {
		if err == nil {
			continue
		}
		name := Kitchen
		if i == 1 {
			name = Cashier
		}
		errs = append(errs, DeliveryError{Type: name, Error: err.Error()})
	}
	return errs
}

func (d *Dispatcher) send(ctx context.Context, dest destination, p Payload) error {
	log := logger.FromCtx(ctx).With(
		zap.String("destination", dest.name),
		zap.Int32("order_number", p.OrderNumber),
	)

	if dest.url == "" {
		metrics.WebhookDeliveries.WithLabelValues(dest.name, "skipped").Inc()
		log.Warn("webhook skipped", zap.Error(errNotConfigured))
		return fmt.Errorf("%s: %w", dest.name, errNotConfigured)
	}

	start := time.Now()
	err := dest.cb.run(func() error {
		resp, err := d.client.R().
			SetContext(ctx).
			SetBody(p).
			Post(dest.url)
		if err != nil {
			return fmt.Errorf("%s webhook: %w", dest.name, err)
		}
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return fmt.Errorf("%s webhook returned status %d", dest.name, resp.StatusCode())
		}
		return nil
	})
	metrics.WebhookDuration.WithLabelValues(dest.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(dest.name, "failure").Inc()
		log.Error("webhook delivery failed", zap.Error(err))
		return err
	}

	metrics.WebhookDeliveries.WithLabelValues(dest.name, "success").Inc()
	log.Info("webhook delivered")
	return nil
}
