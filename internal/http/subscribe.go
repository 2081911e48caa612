package router

import (
	"net/http"
	"time"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/middlewares"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SubscribeOrders держит долгоживущее вебсокет-соединение наблюдателя и
// транслирует в него события ленты изменений. Подписка отменяется на всех
// путях выхода: обрыв чтения, ошибка записи, закрытие ленты.
func SubscribeOrders(w http.ResponseWriter, r *http.Request) {
	feedService := middlewares.GetServiceFromContext[models.FeedService](w, r, middlewares.FeedServiceKey)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := (*feedService).Subscribe()
	defer cancel()

	// Читатель нужен только чтобы заметить закрытие соединения клиентом.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			if err := conn.WriteJSON(event); err != nil {
				logger.Log.Info("observer disconnected", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
