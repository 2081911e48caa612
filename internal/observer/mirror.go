package observer

import (
	"sort"
	"sync"

	"github.com/Renal37/royal-threads-orders/internal/models"
)

// Mirror - локальная копия множества заказов у наблюдателя.
// Зеркало не авторитетно: события ленты и полные сверки всегда
// перезаписывают его содержимое.
type Mirror struct {
	mu     sync.Mutex
	orders map[int64]models.Order
}

func NewMirror() *Mirror {
	return &Mirror{
		orders: make(map[int64]models.Order),
	}
}

// Apply идемпотентно применяет событие ленты. Возвращает true, только
// когда вставка добавила физически новый заказ: повторные доставки того
// же INSERT дедуплицируются по идентификатору, чтобы каждый replay не
// будил персонал заново.
func (m *Mirror) Apply(event models.ChangeEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, known := m.orders[event.Order.ID]

	switch event.Op {
	case models.OpInsert:
		if known {
			return false
		}

		m.orders[event.Order.ID] = event.Order
		return true
	case models.OpUpdate:
		// Запоздавшее или продублированное обновление не затирает более
		// свежее состояние: побеждает последняя запись по updated_at.
		if known && existing.UpdatedAt.Time.After(event.Order.UpdatedAt.Time) {
			return false
		}

		m.orders[event.Order.ID] = event.Order
	}

	return false
}

// Seed применяет полный снимок после (пере)подключения. Снимок
// авторитетен и перезаписывает зеркало целиком; возвращаются заказы,
// которых зеркало раньше не видело.
func (m *Mirror) Seed(orders []models.Order) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fresh []models.Order

	for _, order := range orders {
		if _, known := m.orders[order.ID]; !known {
			fresh = append(fresh, order)
		}

		m.orders[order.ID] = order
	}

	return fresh
}

// Get возвращает заказ по идентификатору.
func (m *Mirror) Get(id int64) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	return order, ok
}

// Snapshot возвращает копию содержимого зеркала, новые заказы первыми.
func (m *Mirror) Snapshot() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Order, 0, len(m.orders))
	for _, order := range m.orders {
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Time.After(result[j].CreatedAt.Time)
	})

	return result
}

// Len возвращает число заказов в зеркале.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.orders)
}
