package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Renal37/royal-threads-orders/internal/middlewares"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/Renal37/royal-threads-orders/internal/services"
	"github.com/go-chi/chi/v5"
)

func GetOrders(w http.ResponseWriter, r *http.Request) {
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)

	filter := models.OrderFilter{
		Status: models.OrderStatus(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		http.Error(w, "Unknown status value", http.StatusBadRequest)
		return
	}

	orders, err := (*orderService).GetOrders(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during getting orders: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	middlewares.EncodeJSONResponse(w, orders)
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "Order id is invalid", http.StatusBadRequest)
		return
	}

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)

	order, err := (*orderService).GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			http.Error(w, "Order is not found", http.StatusNotFound)
			return
		}

		http.Error(w, fmt.Sprintf("Error occurred during getting order: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	middlewares.EncodeJSONResponse(w, order)
}

func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "Order id is invalid", http.StatusBadRequest)
		return
	}

	data := middlewares.GetParsedJSONData[models.StatusUpdate](w, r)
	if data.Status == nil {
		http.Error(w, "Request doesn't contain status", http.StatusBadRequest)
		return
	}

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)

	order, err := (*orderService).UpdateStatus(r.Context(), orderID, *data.Status)
	if err != nil {
		if errors.Is(err, services.ErrUnknownStatus) {
			http.Error(w, "Unknown status value", http.StatusBadRequest)
			return
		}

		if errors.Is(err, services.ErrOrderNotFound) {
			http.Error(w, "Order is not found", http.StatusNotFound)
			return
		}

		if errors.Is(err, services.ErrInvalidTransition) {
			http.Error(w, "Status transition is not allowed", http.StatusConflict)
			return
		}

		http.Error(w, fmt.Sprintf("Error occurred during updating order: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	middlewares.EncodeJSONResponse(w, order)
}

func InitializeTransaction(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.InitializeRequest](w, r)

	if data.Email == "" || data.Amount <= 0 {
		http.Error(w, "Request doesn't contain email or positive amount", http.StatusBadRequest)
		return
	}

	paystackService := middlewares.GetServiceFromContext[models.PaystackService](w, r, middlewares.PaystackServiceKey)

	res, err := (*paystackService).InitializeTransaction(r.Context(), data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during initializing transaction: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	middlewares.EncodeJSONResponse(w, res)
}
