package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Renal37/royal-threads-orders/internal/models"
	mock_models "github.com/Renal37/royal-threads-orders/internal/models/mocks"
	"github.com/Renal37/royal-threads-orders/internal/services"
	"github.com/Renal37/royal-threads-orders/internal/utils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

const chargeSuccessBody = `{
	"event": "charge.success",
	"data": {
		"id": 302961,
		"reference": "ref_abc123",
		"amount": 15000,
		"customer": {"email": "customer@email.com"},
		"metadata": {
			"custom_fields": [
				{"variable_name": "order_items", "value": "[{\"id\":1,\"quantity\":2,\"price\":50}]"}
			]
		}
	}
}`

func TestPaystackWebhookRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderServiceMock := mock_models.NewMockOrderService(ctrl)
	paystackServiceMock := mock_models.NewMockPaystackService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, orderServiceMock, paystackServiceMock, nil).get(),
	)
	defer testServer.Close()

	testCases := []struct {
		testName        string
		signature       string
		body            func() io.Reader
		test            func(t *testing.T)
		expectedCode    int
		expectedMessage string
	}{
		{
			testName:  "Should reject request with missing signature",
			signature: "",
			body: func() io.Reader {
				return strings.NewReader(chargeSuccessBody)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "").Return(false)
			},
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "Invalid signature\n",
		},
		{
			testName:  "Should reject request with wrong signature",
			signature: "deadbeef",
			body: func() io.Reader {
				return strings.NewReader(chargeSuccessBody)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "deadbeef").Return(false)
			},
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "Invalid signature\n",
		},
		{
			testName:  "Should return a validation error due to missing body",
			signature: "valid",
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Error occurred during unmarshaling data unexpected end of JSON input\n",
		},
		{
			testName:  "Should ignore event of another type",
			signature: "valid",
			body: func() io.Reader {
				return strings.NewReader(`{"event": "transfer.success", "data": {"reference": "ref_1"}}`)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: `{"result":"ignored"}`,
		},
		{
			testName:  "Should return a validation error when event has no reference",
			signature: "valid",
			body: func() io.Reader {
				return strings.NewReader(`{"event": "charge.success", "data": {"reference": ""}}`)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
				orderServiceMock.EXPECT().CreateFromCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, services.ErrEmptyReference)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Event has no reference\n",
		},
		{
			testName:  "Should return error when order creation fails",
			signature: "valid",
			body: func() io.Reader {
				return strings.NewReader(chargeSuccessBody)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
				orderServiceMock.EXPECT().CreateFromCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("db is down"))
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Error occurred during creating order: db is down\n",
		},
		{
			testName:  "Should create order",
			signature: "valid",
			body: func() io.Reader {
				return strings.NewReader(chargeSuccessBody)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
				orderServiceMock.EXPECT().CreateFromCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: `{"result":"created"}`,
		},
		{
			testName:  "Should skip duplicate order",
			signature: "valid",
			body: func() io.Reader {
				return strings.NewReader(chargeSuccessBody)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().VerifySignature(gomock.Any(), "valid").Return(true)
				orderServiceMock.EXPECT().CreateFromCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: `{"result":"skipped"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			var body io.Reader

			if tc.body != nil {
				body = tc.body()
			}

			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(
				t,
				testServer,
				"POST",
				"/api/paystack/webhook",
				map[string]string{"X-Paystack-Signature": tc.signature},
				body,
			)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, tc.expectedMessage, mes)
		})
	}
}

func TestGetOrdersRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, orderServiceMock, nil, nil).get(),
	)
	defer testServer.Close()

	orders := []models.Order{
		{ID: 2, Reference: "ref_2", Amount: 150, Status: models.StatusPaid},
		{ID: 1, Reference: "ref_1", Amount: 40, Status: models.StatusDelivered},
	}
	ordersJSON, _ := json.Marshal(orders)

	testCases := []struct {
		testName        string
		targetURL       string
		test            func(t *testing.T)
		expectedCode    int
		expectedMessage string
	}{
		{
			testName:        "Should return a validation error due to unknown status filter",
			targetURL:       "/api/orders?status=shipped",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Unknown status value\n",
		},
		{
			testName:  "Should return all orders",
			targetURL: "/api/orders",
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().GetOrders(gomock.Any(), models.OrderFilter{}).Return(orders, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: string(ordersJSON),
		},
		{
			testName:  "Should pass status and search filters",
			targetURL: "/api/orders?status=paid&q=ref_2",
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().
					GetOrders(gomock.Any(), models.OrderFilter{Status: models.StatusPaid, Query: "ref_2"}).
					Return(orders[:1], nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: mustJSON(orders[:1]),
		},
		{
			testName:  "Should return error when storage fails",
			targetURL: "/api/orders",
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().GetOrders(gomock.Any(), models.OrderFilter{}).Return(nil, errors.New("db is down"))
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Error occurred during getting orders: db is down\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(t, testServer, "GET", tc.targetURL, nil, nil)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, tc.expectedMessage, mes)
		})
	}
}

func TestGetOrderRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, orderServiceMock, nil, nil).get(),
	)
	defer testServer.Close()

	order := models.Order{ID: 7, Reference: "ref_7", Amount: 150, Status: models.StatusProcessing}

	testCases := []struct {
		testName        string
		targetURL       string
		test            func(t *testing.T)
		expectedCode    int
		expectedMessage string
	}{
		{
			testName:        "Should return a validation error due to invalid order id",
			targetURL:       "/api/orders/abc",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Order id is invalid\n",
		},
		{
			testName:  "Should return error when order isn't exist",
			targetURL: "/api/orders/404",
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().GetOrder(gomock.Any(), int64(404)).Return(nil, services.ErrOrderNotFound)
			},
			expectedCode:    http.StatusNotFound,
			expectedMessage: "Order is not found\n",
		},
		{
			testName:  "Should return order",
			targetURL: "/api/orders/7",
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().GetOrder(gomock.Any(), int64(7)).Return(&order, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: mustJSON(&order),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(t, testServer, "GET", tc.targetURL, nil, nil)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, tc.expectedMessage, mes)
		})
	}
}

func TestUpdateOrderStatusRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, orderServiceMock, nil, nil).get(),
	)
	defer testServer.Close()

	processing := models.Order{ID: 7, Reference: "ref_7", Amount: 150, Status: models.StatusProcessing}

	statusBody := func(status models.OrderStatus) func() io.Reader {
		return func() io.Reader {
			data, _ := json.Marshal(models.StatusUpdate{Status: &status})
			return bytes.NewBuffer(data)
		}
	}

	testCases := []struct {
		testName        string
		targetURL       string
		body            func() io.Reader
		test            func(t *testing.T)
		expectedCode    int
		expectedMessage string
	}{
		{
			testName:        "Should return a validation error due to missing body",
			targetURL:       "/api/orders/7/status",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Error occurred during unmarshaling data unexpected end of JSON input\n",
		},
		{
			testName:  "Should return a validation error due to missing status",
			targetURL: "/api/orders/7/status",
			body: func() io.Reader {
				return strings.NewReader(`{}`)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request doesn't contain status\n",
		},
		{
			testName:        "Should return a validation error due to invalid order id",
			targetURL:       "/api/orders/abc/status",
			body:            statusBody(models.StatusProcessing),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Order id is invalid\n",
		},
		{
			testName:  "Should return a validation error due to unknown status",
			targetURL: "/api/orders/7/status",
			body:      statusBody("shipped"),
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().
					UpdateStatus(gomock.Any(), int64(7), models.OrderStatus("shipped")).
					Return(nil, services.ErrUnknownStatus)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Unknown status value\n",
		},
		{
			testName:  "Should return error when order isn't exist",
			targetURL: "/api/orders/404/status",
			body:      statusBody(models.StatusProcessing),
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().
					UpdateStatus(gomock.Any(), int64(404), models.StatusProcessing).
					Return(nil, services.ErrOrderNotFound)
			},
			expectedCode:    http.StatusNotFound,
			expectedMessage: "Order is not found\n",
		},
		{
			testName:  "Should return conflict when transition is not allowed",
			targetURL: "/api/orders/7/status",
			body:      statusBody(models.StatusDelivered),
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().
					UpdateStatus(gomock.Any(), int64(7), models.StatusDelivered).
					Return(nil, services.ErrInvalidTransition)
			},
			expectedCode:    http.StatusConflict,
			expectedMessage: "Status transition is not allowed\n",
		},
		{
			testName:  "Should update order status",
			targetURL: "/api/orders/7/status",
			body:      statusBody(models.StatusProcessing),
			test: func(t *testing.T) {
				orderServiceMock.EXPECT().
					UpdateStatus(gomock.Any(), int64(7), models.StatusProcessing).
					Return(&processing, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: mustJSON(&processing),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			var body io.Reader

			if tc.body != nil {
				body = tc.body()
			}

			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(
				t,
				testServer,
				"PATCH",
				tc.targetURL,
				map[string]string{"Content-Type": "application/json"},
				body,
			)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, tc.expectedMessage, mes)
		})
	}
}

func TestInitializeTransactionRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paystackServiceMock := mock_models.NewMockPaystackService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, nil, paystackServiceMock, nil).get(),
	)
	defer testServer.Close()

	response := models.InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		AccessCode:       "abc",
		Reference:        "ref_new",
	}

	testCases := []struct {
		testName        string
		body            func() io.Reader
		test            func(t *testing.T)
		expectedCode    int
		expectedMessage string
	}{
		{
			testName:        "Should return a validation error due to missing body",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Error occurred during unmarshaling data unexpected end of JSON input\n",
		},
		{
			testName: "Should return a validation error due to missing email",
			body: func() io.Reader {
				return strings.NewReader(`{"amount": 150}`)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request doesn't contain email or positive amount\n",
		},
		{
			testName: "Should return a validation error due to non-positive amount",
			body: func() io.Reader {
				return strings.NewReader(`{"email": "customer@email.com", "amount": 0}`)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request doesn't contain email or positive amount\n",
		},
		{
			testName: "Should return error when paystack request fails",
			body: func() io.Reader {
				return strings.NewReader(`{"email": "customer@email.com", "amount": 150}`)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().
					InitializeTransaction(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("paystack is down"))
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Error occurred during initializing transaction: paystack is down\n",
		},
		{
			testName: "Should initialize transaction",
			body: func() io.Reader {
				return strings.NewReader(`{"email": "customer@email.com", "amount": 150}`)
			},
			test: func(t *testing.T) {
				paystackServiceMock.EXPECT().
					InitializeTransaction(gomock.Any(), gomock.Any()).
					Return(&response, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: mustJSON(&response),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			var body io.Reader

			if tc.body != nil {
				body = tc.body()
			}

			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(
				t,
				testServer,
				"POST",
				"/api/paystack/initialize",
				map[string]string{"Content-Type": "application/json"},
				body,
			)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, tc.expectedMessage, mes)
		})
	}
}

func mustJSON(data any) string {
	res, _ := json.Marshal(data)
	return string(res)
}
