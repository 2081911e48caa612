package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// parsedJSONDataFieldType является типом для хранения данных JSON в контексте запроса.
type parsedJSONDataFieldType string

// parsedJSONDataField - ключ для хранения данных JSON в контексте запроса.
const parsedJSONDataField parsedJSONDataFieldType = "parsedJSONDataField"

// ModelParameter определяет интерфейс, который могут реализовывать модели, поддерживающие как одиночные значения, так и срезы значений.
type ModelParameter interface {
	interface{} | []interface{}
}

// JSONMiddleware обрабатывает JSON-запросы и извлекает данные JSON из тела запроса.
func JSONMiddleware[Model ModelParameter](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "Content-Type is not application/json", http.StatusUnsupportedMediaType)
			return
		}

		var parsedData Model
		var buf bytes.Buffer

		if _, err := buf.ReadFrom(r.Body); err != nil {
			http.Error(w, fmt.Sprintf("Error occurred during reading from the body: %s", err.Error()), http.StatusBadRequest)
			return
		}

		if err := json.Unmarshal(buf.Bytes(), &parsedData); err != nil {
			http.Error(w, fmt.Sprintf("Error occurred during unmarshaling data %s", err.Error()), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), parsedJSONDataField, parsedData)))
	})
}

// GetParsedJSONData извлекает данные JSON из контекста запроса.
func GetParsedJSONData[Model ModelParameter](w http.ResponseWriter, r *http.Request) Model {
	data, ok := r.Context().Value(parsedJSONDataField).(Model)

	if !ok {
		http.Error(w, "Could not retrieve data from context", http.StatusInternalServerError)
		var empty Model
		return empty
	}

	return data
}

// EncodeJSONResponse кодирует данные в формат JSON и отправляет их в ответе.
func EncodeJSONResponse[Model any](w http.ResponseWriter, data Model) {
	w.Header().Set("Content-Type", "application/json")

	resp, err := json.Marshal(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during marshaling response: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	if _, err := w.Write(resp); err != nil {
		http.Error(w, fmt.Sprintf("Error occurred during writing response: %s", err.Error()), http.StatusInternalServerError)
		return
	}
}
