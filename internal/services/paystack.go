package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/models"
)

var (
	ErrPaystackRequest = errors.New("провайдер отклонил запрос")
)

// PaystackService проверяет подлинность вебхуков и инициирует оплату.
type PaystackService struct {
	endpoint  string
	secretKey string
	client    *http.Client
}

func NewPaystackService(endpoint, secretKey string) *PaystackService {
	return &PaystackService{
		endpoint:  endpoint,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifySignature сверяет HMAC-SHA512 от точных байтов тела запроса с
// подписью из заголовка. Сравнение выполняется за постоянное время.
// Проверять допустимо только исходные байты: пересериализованный JSON
// не обязан совпадать с сериализацией провайдера байт в байт.
func (p *PaystackService) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// MinorUnitsPerCedi - курс перевода песев в седи. Провайдер считает в
// минорных единицах, хранилище - в основных; конвертация обязана
// происходить на каждой границе и больше нигде.
const MinorUnitsPerCedi = 100

type initializeRequestBody struct {
	Email    string             `json:"email"`
	Amount   int64              `json:"amount"`
	Currency string             `json:"currency"`
	Metadata initializeMetadata `json:"metadata"`
}

type initializeMetadata struct {
	CustomFields []models.CustomField `json:"custom_fields"`
}

type initializeResponseBody struct {
	Status  bool                      `json:"status"`
	Message string                    `json:"message"`
	Data    models.InitializeResponse `json:"data"`
}

// InitializeTransaction создает у провайдера сессию оплаты и возвращает
// URL для редиректа покупателя. Сумма переводится в песевы, позиции
// заказа сериализуются в custom field, откуда их потом читает вебхук.
func (p *PaystackService) InitializeTransaction(ctx context.Context, req models.InitializeRequest) (*models.InitializeResponse, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("не удалось сериализовать позиции заказа: %w", err)
	}

	body, err := json.Marshal(initializeRequestBody{
		Email:    req.Email,
		Amount:   int64(math.Round(req.Amount * MinorUnitsPerCedi)),
		Currency: "GHS",
		Metadata: initializeMetadata{
			CustomFields: []models.CustomField{
				{VariableName: models.MetadataFieldOrderItems, Value: string(itemsJSON)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось сериализовать запрос: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send data by using POST method: %w", err)
	}

	defer res.Body.Close()

	var parsedData initializeResponseBody
	var buf bytes.Buffer

	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, fmt.Errorf("failed to read from response body: %w", err)
	}

	if err := json.Unmarshal(buf.Bytes(), &parsedData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	if res.StatusCode != http.StatusOK || !parsedData.Status {
		return nil, fmt.Errorf("%w: %s", ErrPaystackRequest, parsedData.Message)
	}

	return &parsedData.Data, nil
}
