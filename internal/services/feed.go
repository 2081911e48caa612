package services

import (
	"sync"

	"github.com/Renal37/royal-threads-orders/internal/logger"
	"github.com/Renal37/royal-threads-orders/internal/models"
	"go.uber.org/zap"
)

// Буфер на подписчика. Подписчик, переставший читать, отключается,
// а не копит события без ограничения: после переподключения он обязан
// выполнить полную сверку, лента сама пропуски не восстанавливает.
const subscriberBuffer = 16

// FeedService раздает события ленты изменений всем подключенным
// наблюдателям. Порядок событий по одному заказу сохраняется:
// рассылку ведет единственная горутина Run.
type FeedService struct {
	mu          sync.Mutex
	subscribers map[int]chan models.ChangeEvent
	nextID      int
	closed      bool
}

// NewFeedService создает новый экземпляр FeedService
func NewFeedService() *FeedService {
	return &FeedService{
		subscribers: make(map[int]chan models.ChangeEvent),
	}
}

// Run потребляет события хранилища до закрытия источника.
// По завершении все подписки закрываются.
func (f *FeedService) Run(source <-chan models.ChangeEvent) {
	for event := range source {
		f.broadcast(event)
	}

	f.closeAll()
}

// Subscribe регистрирует нового наблюдателя. Возвращает канал событий и
// функцию отмены; отмена безопасна при повторном вызове и гарантированно
// закрывает канал.
func (f *FeedService) Subscribe() (<-chan models.ChangeEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan models.ChangeEvent, subscriberBuffer)

	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextID
	f.nextID++
	f.subscribers[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		if sub, ok := f.subscribers[id]; ok {
			delete(f.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

func (f *FeedService) broadcast(event models.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, sub := range f.subscribers {
		select {
		case sub <- event:
		default:
			// Переполненный буфер: подписчик не читает. Отключаем его,
			// чтобы не блокировать рассылку остальным.
			delete(f.subscribers, id)
			close(sub)
			logger.Log.Warn("slow feed subscriber dropped",
				zap.Int("subscriberID", id),
			)
		}
	}
}

func (f *FeedService) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	for id, sub := range f.subscribers {
		delete(f.subscribers, id)
		close(sub)
	}
}
