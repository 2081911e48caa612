package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"go.uber.org/zap"
)

const (
	ordersChannel   = "orders_feed"
	reconnectDelay  = 3 * time.Second
	unlistenTimeout = time.Second
)

// SelectOrderRecordQuery возвращает строку заказа в том же виде, в каком
// ее публикует триггер orders_notify: для событий с усеченной нагрузкой
// слушатель дочитывает строку этим запросом.
const SelectOrderRecordQuery = `
	SELECT
	    to_jsonb(orders) - 'raw_payload'
	FROM
	    orders
	WHERE
	    id = $1
`

// StartOrdersFeed подписывается на канал orders_feed и отдает события
// вставки/обновления заказов. Возвращаемый канал закрывается при отмене
// контекста; при потере соединения слушатель переподключается сам, но
// пропущенные за время разрыва события не восстанавливаются - потребители
// обязаны сверяться с таблицей при каждом переподключении.
func (d *Database) StartOrdersFeed(ctx context.Context) <-chan models.ChangeEvent {
	events := make(chan models.ChangeEvent, 64)

	go func() {
		defer close(events)

		for {
			if err := d.listenOrders(ctx, events); err != nil && ctx.Err() == nil {
				logger.Log.Error("orders feed connection lost", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()

	return events
}

// decodeFeedEvent разбирает полезную нагрузку уведомления. Второй
// результат истинен для усеченной нагрузки, в которой триггер оставил
// только идентификатор: полную строку нужно дочитать из таблицы.
func decodeFeedEvent(payload string) (models.ChangeEvent, bool, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return models.ChangeEvent{}, false, err
	}

	// reference в таблице NOT NULL, в полной записи он пустым не бывает
	slim := event.Order.ID != 0 && event.Order.Reference == ""

	return event, slim, nil
}

// listenOrders держит выделенное соединение из пула в режиме LISTEN и
// транслирует каждое уведомление в типизированное событие.
func (d *Database) listenOrders(ctx context.Context, events chan<- models.ChangeEvent) error {
	conn, err := d.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("не удалось получить соединение для ленты изменений: %w", err)
	}

	// Перед возвратом в пул подписка снимается, иначе следующий
	// владелец соединения унаследует чужие уведомления. Исходный
	// контекст к этому моменту может быть уже отменен.
	defer func() {
		unlistenCtx, cancel := context.WithTimeout(context.Background(), unlistenTimeout)
		defer cancel()

		if _, err := conn.Exec(unlistenCtx, "UNLISTEN "+ordersChannel); err != nil {
			logger.Log.Warn("failed to unlisten orders feed", zap.Error(err))
		}

		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+ordersChannel); err != nil {
		return fmt.Errorf("не удалось подписаться на канал %s: %w", ordersChannel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("ошибка ожидания уведомления: %w", err)
		}

		event, slim, err := decodeFeedEvent(notification.Payload)
		if err != nil {
			logger.Log.Warn("undecodable orders feed payload",
				zap.Error(err),
				zap.String("payload", notification.Payload),
			)
			continue
		}

		if slim {
			var record []byte

			if err := conn.QueryRow(ctx, SelectOrderRecordQuery, event.Order.ID).Scan(&record); err != nil {
				logger.Log.Warn("failed to fetch order for oversized feed payload",
					zap.Int64("orderID", event.Order.ID),
					zap.Error(err),
				)
				continue
			}

			if err := json.Unmarshal(record, &event.Order); err != nil {
				logger.Log.Warn("undecodable order record",
					zap.Int64("orderID", event.Order.ID),
					zap.Error(err),
				)
				continue
			}
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
