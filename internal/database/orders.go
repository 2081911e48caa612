package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Определение пользовательских ошибок
var (
	ErrDuplicateOrder = errors.New("заказ уже существует") // Повторная доставка события с тем же reference
)

// SQL-запросы для работы с заказами
const (
	InsertOrderQuery = `
		INSERT INTO
			orders (reference, transaction_id, amount, status, items,
			        email, customer_name, customer_phone,
			        delivery_method, delivery_address, raw_payload, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	orderColumns = `
			id,
			reference,
			transaction_id,
			amount,
			status,
			items,
			email,
			customer_name,
			customer_phone,
			delivery_method,
			delivery_address,
			created_at,
			updated_at,
			paid_at,
			processed_at,
			delivered_at
	`
	SelectOrderByReferenceQuery = `
		SELECT` + orderColumns + `
		FROM
		    orders
		WHERE
		    reference = $1
	`
	SelectOrderByIDQuery = `
		SELECT` + orderColumns + `
		FROM
		    orders
		WHERE
		    id = $1
	`
	SelectOrdersQuery = `
		SELECT` + orderColumns + `
		FROM
		    orders
		WHERE
			($1 = '' OR status = $1)
			AND ($2 = ''
				OR reference ILIKE '%' || $2 || '%'
				OR email ILIKE '%' || $2 || '%'
				OR customer_name ILIKE '%' || $2 || '%')
		ORDER BY
			created_at DESC
	`
	// Переход применяется только из ожидаемого текущего статуса: при
	// конкурентном обновлении проигравший не затирает чужой переход.
	UpdateOrderStatusQuery = `
		UPDATE
			orders
		SET
			status = $3,
			updated_at = now(),
			processed_at = CASE WHEN $3 = 'processing' THEN now() ELSE processed_at END,
			delivered_at = CASE WHEN $3 = 'delivered' THEN now() ELSE delivered_at END
		WHERE
		    id = $1 AND status = $2
		RETURNING` + orderColumns + `
	`
)

// Структура для хранения строки заказа
type OrderDB struct {
	ID              int64
	Reference       string        // Ключ идемпотентности от провайдера
	TransactionID   int64
	Amount          float64       // В седи; конвертация из песев уже выполнена
	Status          OrderStatusDB
	Items           []byte        // JSONB со списком позиций
	Email           string
	CustomerName    string
	CustomerPhone   string
	DeliveryMethod  string
	DeliveryAddress string
	RawPayload      []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
	ProcessedAt     *time.Time
	DeliveredAt     *time.Time
}

// Определение статуса заказа с возможностью преобразования в/из базы данных
type OrderStatusDB struct {
	models.OrderStatus
}

// Реализация интерфейса sql.Scanner для чтения статуса заказа из базы данных
func (s *OrderStatusDB) Scan(value interface{}) error {
	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("статус заказа должен быть строкой, а не %T", value)
	}

	*s = OrderStatusDB{models.OrderStatus(strVal)}
	return nil
}

// Реализация интерфейса driver.Valuer для преобразования статуса заказа в строку перед записью в базу данных
func (s OrderStatusDB) Value() (driver.Value, error) {
	return string(s.OrderStatus), nil
}

func scanOrder(row pgx.Row) (*OrderDB, error) {
	order := &OrderDB{}

	err := row.Scan(
		&order.ID,
		&order.Reference,
		&order.TransactionID,
		&order.Amount,
		&order.Status,
		&order.Items,
		&order.Email,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.DeliveryMethod,
		&order.DeliveryAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.PaidAt,
		&order.ProcessedAt,
		&order.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CreateOrder вставляет новый заказ. Нарушение уникальности reference
// возвращается как ErrDuplicateOrder: для конвейера это штатный исход
// повторной доставки, а не ошибка.
func (d *Database) CreateOrder(ctx context.Context, order OrderDB) (int64, error) {
	var id int64

	err := d.db.QueryRow(ctx, InsertOrderQuery,
		order.Reference,
		order.TransactionID,
		order.Amount,
		order.Status,
		order.Items,
		order.Email,
		order.CustomerName,
		order.CustomerPhone,
		order.DeliveryMethod,
		order.DeliveryAddress,
		order.RawPayload,
		order.PaidAt,
	).Scan(&id)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return 0, ErrDuplicateOrder
		}
		return 0, fmt.Errorf("ошибка создания заказа: %w", err)
	}

	return id, nil
}

// FindOrderByReference ищет заказ по reference провайдера
func (d *Database) FindOrderByReference(ctx context.Context, reference string) (*OrderDB, error) {
	order, err := scanOrder(d.db.QueryRow(ctx, SelectOrderByReferenceQuery, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска заказа по reference: %w", err)
	}

	return order, nil
}

// FindOrderByID ищет заказ по внутреннему идентификатору
func (d *Database) FindOrderByID(ctx context.Context, id int64) (*OrderDB, error) {
	order, err := scanOrder(d.db.QueryRow(ctx, SelectOrderByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска заказа: %w", err)
	}

	return order, nil
}

// FindOrders возвращает заказы по фильтру, новые первыми
func (d *Database) FindOrders(ctx context.Context, status, query string) (*[]OrderDB, error) {
	var result []OrderDB

	rows, err := d.db.Query(ctx, SelectOrdersQuery, status, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска заказов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка обработки строки с заказом: %w", err)
		}
		result = append(result, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по строкам: %w", err)
	}

	return &result, nil
}

// UpdateOrderStatus применяет переход из текущего статуса в целевой и
// проставляет метки времени. Возвращает nil без ошибки, если строка не
// найдена или текущий статус уже не совпадает с ожидаемым.
func (d *Database) UpdateOrderStatus(ctx context.Context, id int64, current, target OrderStatusDB) (*OrderDB, error) {
	order, err := scanOrder(d.db.QueryRow(ctx, UpdateOrderStatusQuery, id, current, target))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка обновления статуса заказа: %w", err)
	}

	return order, nil
}
