package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultReconnectDelay = 5 * time.Second

// Client поддерживает у наблюдателя согласованное зеркало заказов:
// полная сверка при каждом (пере)подключении, затем инкрементальные
// события подписки. Лента сама по себе источником истины не считается.
type Client struct {
	apiURL            string
	wsURL             string
	mirror            *Mirror
	alerter           Alerter
	client            *http.Client
	reconnectDelay    time.Duration
	reconcileInterval time.Duration

	// Первая сверка помечает зеркало засеянным. Читается и пишется
	// конкурентно: периодическая сверка живет в своей горутине.
	seeded atomic.Bool
}

// NewClient создает наблюдателя для сервера по адресу host:port.
// reconcileInterval задает периодическую фоновую сверку; ноль отключает ее.
func NewClient(endpoint string, alerter Alerter, reconcileInterval time.Duration) *Client {
	return &Client{
		apiURL:            "http://" + endpoint,
		wsURL:             "ws://" + endpoint + "/api/orders/subscribe",
		mirror:            NewMirror(),
		alerter:           alerter,
		client:            &http.Client{Timeout: 10 * time.Second},
		reconnectDelay:    defaultReconnectDelay,
		reconcileInterval: reconcileInterval,
	}
}

// Mirror открывает доступ к локальному зеркалу (для показа персоналу).
func (c *Client) Mirror() *Mirror {
	return c.mirror
}

// Run крутит цикл подключения до отмены контекста.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.session(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Warn("observer session ended", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

// session выполняет один цикл сверка-подписка-применение.
func (c *Client) session(ctx context.Context) error {
	if err := c.reconcile(ctx); err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к ленте: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if c.reconcileInterval > 0 {
		ticker := time.NewTicker(c.reconcileInterval)
		defer ticker.Stop()

		go func() {
			for {
				select {
				case <-ticker.C:
					if err := c.reconcile(ctx); err != nil {
						logger.Log.Warn("periodic reconcile failed", zap.Error(err))
					}
				case <-done:
					return
				}
			}
		}()
	}

	for {
		var event models.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			return fmt.Errorf("лента изменений оборвалась: %w", err)
		}

		c.apply(event)
	}
}

// reconcile загружает полный снимок заказов и перезаписывает зеркало.
// Первая сверка молчаливая: оповещать обо всей истории при старте нечего.
func (c *Client) reconcile(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/api/orders", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("не удалось получить снимок заказов: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("снимок заказов вернул статус %d", res.StatusCode)
	}

	var orders []models.Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	fresh := c.mirror.Seed(orders)

	if c.seeded.Load() {
		for _, order := range fresh {
			c.alert(order)
		}
	}

	c.seeded.Store(true)

	logger.Log.Info("orders reconciled",
		zap.Int("total", c.mirror.Len()),
		zap.Int("fresh", len(fresh)),
	)

	return nil
}

func (c *Client) apply(event models.ChangeEvent) {
	isNew := c.mirror.Apply(event)

	if event.Op == models.OpUpdate {
		logger.Log.Info("order updated",
			zap.Int64("orderID", event.Order.ID),
			zap.String("status", string(event.Order.Status)),
		)
	}

	if event.Op == models.OpInsert && isNew {
		c.alert(event.Order)
	}
}

func (c *Client) alert(order models.Order) {
	logger.Log.Info("new order received",
		zap.Int64("orderID", order.ID),
		zap.String("reference", order.Reference),
		zap.Float64("amount", order.Amount),
	)

	if err := c.alerter.NewOrder(order); err != nil {
		logger.Log.Warn("order alert partially failed", zap.Error(err))
	}
}
