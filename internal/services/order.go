package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/database"
	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/Renal37/royal-threads-orders/internal/utils"
	"go.uber.org/zap"
)

// Определяем ошибки, связанные с заказами
var (
	ErrEmptyReference    = errors.New("событие без reference")
	ErrOrderNotFound     = errors.New("заказ не найден")
	ErrUnknownStatus     = errors.New("неизвестный статус заказа")
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
)

// OrderService представляет сервис для работы с заказами: идемпотентная
// запись по событиям оплаты и контроль жизненного цикла статусов.
type OrderService struct {
	storage orderStorage
}

// Интерфейс хранилища для работы с заказами
type orderStorage interface {
	CreateOrder(ctx context.Context, order database.OrderDB) (int64, error)
	FindOrderByReference(ctx context.Context, reference string) (*database.OrderDB, error)
	FindOrderByID(ctx context.Context, id int64) (*database.OrderDB, error)
	FindOrders(ctx context.Context, status, query string) (*[]database.OrderDB, error)
	UpdateOrderStatus(ctx context.Context, id int64, current, target database.OrderStatusDB) (*database.OrderDB, error)
}

// NewOrderService создает новый экземпляр OrderService
func NewOrderService(storage orderStorage) *OrderService {
	return &OrderService{storage: storage}
}

// CreateFromCharge записывает заказ по проверенному событию charge.success.
// Возвращает false без ошибки, если заказ с таким reference уже существует.
// Предварительная проверка существования - только быстрый путь; гонку
// между проверкой и вставкой закрывает уникальный индекс по reference,
// и его срабатывание трактуется так же, как найденный дубликат.
func (o *OrderService) CreateFromCharge(ctx context.Context, charge models.ChargeData, raw []byte) (bool, error) {
	if charge.Reference == "" {
		return false, ErrEmptyReference
	}

	existing, err := o.storage.FindOrderByReference(ctx, charge.Reference)
	if err != nil {
		return false, err
	}

	if existing != nil {
		logger.Log.Info("duplicate charge event skipped",
			zap.String("reference", charge.Reference),
		)
		return false, nil
	}

	amount := float64(charge.Amount) / MinorUnitsPerCedi
	items := o.parseOrderItems(charge)
	o.checkAmountConsistency(charge, items)

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return false, err
	}

	var paidAt *time.Time
	if charge.PaidAt != nil {
		paidAt = &charge.PaidAt.Time
	}

	order := database.OrderDB{
		Reference:       charge.Reference,
		TransactionID:   charge.ID,
		Amount:          amount,
		Status:          database.OrderStatusDB{OrderStatus: models.StatusPaid},
		Items:           itemsJSON,
		Email:           charge.Customer.Email,
		CustomerName:    charge.Metadata.CustomerName,
		CustomerPhone:   charge.Metadata.CustomerPhone,
		DeliveryMethod:  string(o.deliveryMethod(charge)),
		DeliveryAddress: charge.Metadata.DeliveryAddress,
		RawPayload:      raw,
		PaidAt:          paidAt,
	}

	id, err := o.storage.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateOrder) {
			logger.Log.Info("concurrent duplicate lost the insert race, skipped",
				zap.String("reference", charge.Reference),
			)
			return false, nil
		}
		return false, err
	}

	logger.Log.Info("order created",
		zap.Int64("orderID", id),
		zap.String("reference", charge.Reference),
		zap.Float64("amount", amount),
		zap.Int("items", len(items)),
	)

	return true, nil
}

// parseOrderItems извлекает позиции заказа из custom field метаданных.
// Нечитаемые метаданные не валят прием платежа: заказ сохраняется с
// пустым списком позиций, а потеря данных фиксируется в логе.
func (o *OrderService) parseOrderItems(charge models.ChargeData) []models.OrderItem {
	items := []models.OrderItem{}

	value, ok := charge.Metadata.Field(models.MetadataFieldOrderItems)
	if !ok {
		logger.Log.Warn("charge metadata has no order items",
			zap.String("reference", charge.Reference),
		)
		return items
	}

	if err := json.Unmarshal([]byte(value), &items); err != nil {
		logger.Log.Warn("unparsable order items metadata, saving order without items",
			zap.String("reference", charge.Reference),
			zap.Error(err),
		)
		return []models.OrderItem{}
	}

	return items
}

// checkAmountConsistency сверяет сумму позиций с суммой списания.
// Расхождение - сигнал о подозрительном событии, но не отказ: оплата
// уже состоялась, исходное тело остается в raw_payload для ручного разбора.
func (o *OrderService) checkAmountConsistency(charge models.ChargeData, items []models.OrderItem) {
	if len(items) == 0 {
		return
	}

	var sum float64
	for _, item := range items {
		sum += float64(item.Quantity) * item.Price
	}

	if int64(math.Round(sum*MinorUnitsPerCedi)) != charge.Amount {
		logger.Log.Warn("charge amount does not match item total, order flagged for review",
			zap.String("reference", charge.Reference),
			zap.Int64("chargedMinorUnits", charge.Amount),
			zap.Float64("itemTotal", sum),
		)
	}
}

// deliveryMethod применяет правила значений по умолчанию к способу доставки.
func (o *OrderService) deliveryMethod(charge models.ChargeData) models.DeliveryMethod {
	method := models.DeliveryMethod(charge.Metadata.DeliveryMethod)

	if method != models.DeliveryPickup && method != models.DeliveryCourier {
		return models.DeliveryPickup
	}

	if method == models.DeliveryCourier && charge.Metadata.DeliveryAddress == "" {
		logger.Log.Warn("delivery order without address",
			zap.String("reference", charge.Reference),
		)
	}

	return method
}

// GetOrders возвращает заказы по фильтру, новые первыми
func (o *OrderService) GetOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders, err := o.storage.FindOrders(ctx, string(filter.Status), filter.Query)
	if err != nil {
		return []models.Order{}, err
	}

	if orders == nil {
		return []models.Order{}, nil
	}

	result := make([]models.Order, len(*orders))
	for i, order := range *orders {
		result[i] = toModel(&order)
	}

	return result, nil
}

// GetOrder возвращает заказ по идентификатору
func (o *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := o.storage.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order == nil {
		return nil, ErrOrderNotFound
	}

	result := toModel(order)
	return &result, nil
}

// UpdateStatus применяет запрошенный наблюдателем переход статуса.
// Сервис не решает, какой переход делать - он только проверяет
// допустимость по графу жизненного цикла и проставляет метки времени.
func (o *OrderService) UpdateStatus(ctx context.Context, id int64, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, ErrUnknownStatus
	}

	current, err := o.storage.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current == nil {
		return nil, ErrOrderNotFound
	}

	if !current.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	updated, err := o.storage.UpdateOrderStatus(ctx, id,
		current.Status,
		database.OrderStatusDB{OrderStatus: target},
	)
	if err != nil {
		return nil, err
	}

	// Конкурентный переход успел раньше: статус уже не тот, что мы
	// проверяли. Для запросившего это тот же недопустимый переход.
	if updated == nil {
		return nil, ErrInvalidTransition
	}

	result := toModel(updated)
	return &result, nil
}

// toModel преобразует строку базы данных в модель заказа
func toModel(order *database.OrderDB) models.Order {
	items := []models.OrderItem{}
	if len(order.Items) > 0 {
		if err := json.Unmarshal(order.Items, &items); err != nil {
			logger.Log.Warn("unparsable items column",
				zap.Int64("orderID", order.ID),
				zap.Error(err),
			)
		}
	}

	result := models.Order{
		ID:              order.ID,
		Reference:       order.Reference,
		TransactionID:   order.TransactionID,
		Amount:          order.Amount,
		Status:          order.Status.OrderStatus,
		Items:           items,
		Email:           order.Email,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		DeliveryMethod:  models.DeliveryMethod(order.DeliveryMethod),
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       asDate(order.CreatedAt),
		UpdatedAt:       asDate(order.UpdatedAt),
	}

	result.PaidAt = asDatePtr(order.PaidAt)
	result.ProcessedAt = asDatePtr(order.ProcessedAt)
	result.DeliveredAt = asDatePtr(order.DeliveredAt)

	return result
}

func asDate(t time.Time) utils.RFC3339Date {
	return utils.RFC3339Date{Time: t}
}

func asDatePtr(t *time.Time) *utils.RFC3339Date {
	if t == nil {
		return nil
	}

	date := utils.RFC3339Date{Time: *t}
	return &date
}
