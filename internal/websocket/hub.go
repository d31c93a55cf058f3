package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event - конверт события, уходящего клиентам комнаты викторины
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub раздает события по комнатам викторин.
// Доставка best-effort: клиент с переполненным буфером отключается,
// источником истины остается HTTP-поверхность.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Register добавляет клиента в комнату его викторины
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.quizID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.quizID] = room
	}
	room[client] = struct{}{}
	log.Printf("[WSHub] Клиент подключен: quiz=%s user=%s всего=%d", client.quizID, client.userID, len(room))
}

// Unregister убирает клиента из комнаты и закрывает его канал отправки
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.quizID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.quizID)
	}
}

// BroadcastToQuiz отправляет событие всем клиентам комнаты викторины
func (h *Hub) BroadcastToQuiz(quizID string, eventType string, payload interface{}) {
	message, err := json.Marshal(Event{Type: eventType, Data: payload})
	if err != nil {
		log.Printf("[WSHub] Ошибка сериализации события %s: %v", eventType, err)
		return
	}

	// Отправка идет под RLock: close(send) в Unregister выполняется
	// под полным Lock и не может пересечься с отправкой.
	h.mu.RLock()
	var slow []*Client
	for client := range h.rooms[quizID] {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Медленные клиенты: буфер полон, отключаем.
	// Unregister берет полный Lock, поэтому вызывается после RUnlock.
	for _, client := range slow {
		h.Unregister(client)
	}
}

// RoomSize возвращает число подключенных клиентов комнаты
func (h *Hub) RoomSize(quizID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[quizID])
}
