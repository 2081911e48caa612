package models

import (
	"encoding/json"

	"github.com/Renal37/royal-threads-orders/internal/utils"
)

// ChargeEvent - конверт вебхука платежного провайдера: {event, data}.
type ChargeEvent struct {
	Event string     `json:"event"`
	Data  ChargeData `json:"data"`
}

const EventChargeSuccess = "charge.success"

// ChargeData - полезная нагрузка события charge.success.
// Amount приходит в минорных единицах (песевах) и конвертируется
// в седи ровно один раз, при записи заказа.
type ChargeData struct {
	ID        int64              `json:"id"`
	Reference string             `json:"reference"`
	Amount    int64              `json:"amount"`
	PaidAt    *utils.RFC3339Date `json:"paid_at,omitempty"`
	Customer  ChargeCustomer     `json:"customer"`
	Metadata  ChargeMetadata     `json:"metadata"`
}

type ChargeCustomer struct {
	Email string `json:"email"`
}

// ChargeMetadata - недоверенные дополнительные поля от кассы.
// Все поля опциональны; правила значений по умолчанию применяются
// один раз в OrderService.CreateFromCharge.
type ChargeMetadata struct {
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	DeliveryMethod  string        `json:"delivery_method"`
	DeliveryAddress string        `json:"delivery_address"`
	CustomFields    []CustomField `json:"custom_fields"`
}

type CustomField struct {
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// MetadataFieldOrderItems - имя custom field, в котором касса передает
// сериализованный список позиций заказа.
const MetadataFieldOrderItems = "order_items"

// Field возвращает значение custom field по имени.
func (m ChargeMetadata) Field(name string) (string, bool) {
	for _, f := range m.CustomFields {
		if f.VariableName == name {
			return f.Value, true
		}
	}
	return "", false
}

// UnmarshalJSON принимает metadata как объект либо как строку с вложенным
// JSON (провайдер отдает оба варианта в зависимости от способа оплаты).
// Нечитаемая metadata дает пустую структуру, а не ошибку разбора конверта.
func (m *ChargeMetadata) UnmarshalJSON(data []byte) error {
	type plain ChargeMetadata

	var parsed plain
	if err := json.Unmarshal(data, &parsed); err == nil {
		*m = ChargeMetadata(parsed)
		return nil
	}

	var embedded string
	if err := json.Unmarshal(data, &embedded); err == nil {
		if err := json.Unmarshal([]byte(embedded), &parsed); err == nil {
			*m = ChargeMetadata(parsed)
		}
	}

	return nil
}

// DecodeChargeEvent разбирает проверенное тело вебхука.
func DecodeChargeEvent(body []byte) (*ChargeEvent, error) {
	var event ChargeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// InitializeRequest - запрос инициации оплаты от витрины.
// Amount указывается в основной валюте (седи).
type InitializeRequest struct {
	Email  string      `json:"email"`
	Amount float64     `json:"amount"`
	Items  []OrderItem `json:"items"`
}

// InitializeResponse - ответ провайдера с URL для редиректа покупателя.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}
