package models

import (
	"github.com/Renal37/royal-threads-orders/internal/utils"
)

type OrderStatus string

const (
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "delivery"
)

// transitions описывает граф жизненного цикла заказа.
// Отмена достижима из любого нетерминального статуса.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusReady, StatusCancelled},
	StatusReady:      {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid проверяет, что статус входит в известный набор.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal сообщает, является ли статус терминальным.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo проверяет допустимость перехода по графу жизненного цикла.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// OrderItem - позиция заказа. Цена фиксируется на момент оплаты
// и никогда не пересчитывается из текущего каталога.
type OrderItem struct {
	ProductID int64   `json:"id"`
	VariantID *int64  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              int64              `json:"id"`
	Reference       string             `json:"reference"`
	TransactionID   int64              `json:"transaction_id"`
	Amount          float64            `json:"amount"`
	Status          OrderStatus        `json:"status"`
	Items           []OrderItem        `json:"items"`
	Email           string             `json:"email"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	DeliveryMethod  DeliveryMethod     `json:"delivery_method"`
	DeliveryAddress string             `json:"delivery_address"`
	CreatedAt       utils.RFC3339Date  `json:"created_at"`
	UpdatedAt       utils.RFC3339Date  `json:"updated_at"`
	PaidAt          *utils.RFC3339Date `json:"paid_at,omitempty"`
	ProcessedAt     *utils.RFC3339Date `json:"processed_at,omitempty"`
	DeliveredAt     *utils.RFC3339Date `json:"delivered_at,omitempty"`
}

// OrderFilter задает параметры выборки заказов для наблюдателей.
type OrderFilter struct {
	Status OrderStatus
	Query  string
}

// StatusUpdate - команда наблюдателя на переход статуса.
type StatusUpdate struct {
	Status *OrderStatus `json:"status"`
}

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
)

// ChangeEvent - одно событие ленты изменений таблицы заказов.
type ChangeEvent struct {
	Op    ChangeOp `json:"op"`
	Order Order    `json:"record"`
}
