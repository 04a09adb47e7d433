package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	ChatClients map[string]map[*websocket.Conn]*Client // theo từng chatID
	UserClients map[string]map[*websocket.Conn]*Client // theo từng userID (badge, notification)
	Mutex       sync.RWMutex
}

var H = Hub{
	ChatClients: make(map[string]map[*websocket.Conn]*Client),
	UserClients: make(map[string]map[*websocket.Conn]*Client),
}

// Register theo chatID riêng
func (h *Hub) Register(chatID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.ChatClients[chatID]; !ok {
		h.ChatClients[chatID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.ChatClients[chatID][conn] = client

	go h.writePump(client)
}

// RegisterUser: kênh riêng cho từng user, đồng thời đánh dấu online
func (h *Hub) RegisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.UserClients[userID]; !ok {
		h.UserClients[userID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.UserClients[userID][conn] = client

	go h.writePump(client)
}

// Broadcast theo chatID
func (h *Hub) Broadcast(chatID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.ChatClients[chatID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// BroadcastToUser gửi đến mọi kết nối của một user
func (h *Hub) BroadcastToUser(userID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.UserClients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// IsOnline: presence chỉ mang tính tham khảo cho UI, không dùng
// cho bất kỳ quyết định nghiệp vụ nào và không lưu DB.
func (h *Hub) IsOnline(userID string) bool {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	return len(h.UserClients[userID]) > 0
}

// OnlineUserIDs trả danh sách user đang có ít nhất một kết nối
func (h *Hub) OnlineUserIDs() []string {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	ids := make([]string, 0, len(h.UserClients))
	for id, conns := range h.UserClients {
		if len(conns) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// SendChatEvent gửi event JSON vào room của một chat
func SendChatEvent(chatID string, event map[string]interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(chatID, data)
}

// SendBadgeUpdate cập nhật số chưa đọc realtime cho một user
func SendBadgeUpdate(userID string, count int64) {
	data, err := json.Marshal(map[string]interface{}{
		"type":         "badge_update",
		"unread_count": count,
	})
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.BroadcastToUser(userID, data)
}

// NotifyUser gửi một notification realtime đến user
func NotifyUser(userID string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.BroadcastToUser(userID, data)
}

// Unregister client theo chatID
func (h *Hub) Unregister(chatID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.ChatClients[chatID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.ChatClients, chatID)
		}
	}
}

// UnregisterUser gỡ một kết nối của user; hết kết nối thì user offline
func (h *Hub) UnregisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.UserClients[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.UserClients, userID)
		}
	}
}

func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
