package router

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Renal37/royal-threads-orders/internal/middlewares"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/Renal37/royal-threads-orders/internal/services"
)

const (
	maxWebhookBodyBytes = int64(65536)
	signatureHeader     = "X-Paystack-Signature"
)

type webhookResult struct {
	Result string `json:"result"`
}

func PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	// Сырые байты тела читаются один раз и используются и для проверки
	// подписи, и для разбора: подписаны именно они.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during reading from the body: %s", err.Error()), http.StatusBadRequest)
		return
	}

	paystackService := middlewares.GetServiceFromContext[models.PaystackService](w, r, middlewares.PaystackServiceKey)

	if !(*paystackService).VerifySignature(body, r.Header.Get(signatureHeader)) {
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := models.DecodeChargeEvent(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during unmarshaling data %s", err.Error()), http.StatusBadRequest)
		return
	}

	if event.Event != models.EventChargeSuccess {
		middlewares.EncodeJSONResponse(w, webhookResult{Result: "ignored"})
		return
	}

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)

	created, err := (*orderService).CreateFromCharge(r.Context(), event.Data, body)
	if err != nil {
		if errors.Is(err, services.ErrEmptyReference) {
			http.Error(w, "Event has no reference", http.StatusBadRequest)
			return
		}

		// Не-2xx заставит провайдера повторить доставку; повторная
		// обработка безопасна благодаря идемпотентной записи.
		http.Error(w, fmt.Sprintf("Error occurred during creating order: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	if created {
		middlewares.EncodeJSONResponse(w, webhookResult{Result: "created"})
		return
	}

	middlewares.EncodeJSONResponse(w, webhookResult{Result: "skipped"})
}
