package observer

import (
	"fmt"

	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/gen2brain/beeep"
	"github.com/hashicorp/go-multierror"
)

// Alerter получает локальное оповещение о каждом физически новом заказе.
type Alerter interface {
	NewOrder(order models.Order) error
}

// BeeepAlerter - звуковой сигнал плюс системное уведомление.
// Каналы независимы: сбой одного не мешает остальным, итоговая ошибка
// собирает все отказы и логируется вызывающим, не прерывая работу.
type BeeepAlerter struct{}

func (BeeepAlerter) NewOrder(order models.Order) error {
	var result *multierror.Error

	if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
		result = multierror.Append(result, fmt.Errorf("звуковой сигнал: %w", err))
	}

	message := fmt.Sprintf("Order #%s - GH₵%.2f", ShortReference(order.Reference), order.Amount)
	if err := beeep.Alert("New order received", message, ""); err != nil {
		result = multierror.Append(result, fmt.Errorf("системное уведомление: %w", err))
	}

	return result.ErrorOrNil()
}

// ShortReference возвращает последние 6 символов reference для показа персоналу.
func ShortReference(reference string) string {
	if len(reference) <= 6 {
		return reference
	}
	return reference[len(reference)-6:]
}
