package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"devtogether-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка origin
		return true
	},
}

// Hub тримає активні з'єднання за користувачем. Один користувач може мати
// кілька вкладок - кожна отримує власний Client
type Hub struct {
	clients map[primitive.ObjectID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mutex sync.RWMutex
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID primitive.ObjectID

	// Канал send закривається і з Run, і з PushToUser, а пише в нього ще
	// й readPump. closed під м'ютексом гарантує рівно одне закриття і
	// жодного запису після нього
	closeMu sync.Mutex
	closed  bool
}

// enqueue кладе повідомлення в чергу клієнта. false - клієнт уже
// відключений або його буфер повний
func (c *Client) enqueue(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (hub *Hub) Run() {
	for {
		select {
		case client := <-hub.register:
			hub.mutex.Lock()
			if hub.clients[client.userID] == nil {
				hub.clients[client.userID] = make(map[*Client]bool)
			}
			hub.clients[client.userID][client] = true
			hub.mutex.Unlock()
			log.Printf("WebSocket client connected for user %s", client.userID.Hex())

		case client := <-hub.unregister:
			hub.mutex.Lock()
			if clients, ok := hub.clients[client.userID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.closeSend()
					if len(clients) == 0 {
						delete(hub.clients, client.userID)
					}
				}
			}
			hub.mutex.Unlock()
			log.Printf("WebSocket client disconnected for user %s", client.userID.Hex())
		}
	}
}

// PushToUser доставляє повідомлення всім з'єднанням користувача.
// Відсутність з'єднань не є помилкою - користувач офлайн
func (hub *Hub) PushToUser(userID primitive.ObjectID, messageType string, data interface{}) {
	hub.mutex.RLock()
	clients := hub.clients[userID]
	hub.mutex.RUnlock()

	if len(clients) == 0 {
		return
	}

	messageBytes, err := json.Marshal(WSMessage{
		Type: messageType,
		Data: data,
	})
	if err != nil {
		log.Printf("Error marshaling push message: %v", err)
		return
	}

	hub.mutex.Lock()
	for client := range clients {
		if !client.enqueue(messageBytes) {
			// Повільний споживач - відключаємо, щоб не тримати всю розсилку
			client.closeSend()
			delete(clients, client)
			if len(clients) == 0 {
				delete(hub.clients, userID)
			}
		}
	}
	hub.mutex.Unlock()
}

// PushToUsers доставляє одне повідомлення списку користувачів
func (hub *Hub) PushToUsers(userIDs []primitive.ObjectID, messageType string, data interface{}) {
	for _, userID := range userIDs {
		hub.PushToUser(userID, messageType, data)
	}
}

func (hub *Hub) GetConnectionsCount() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	count := 0
	for _, clients := range hub.clients {
		count += len(clients)
	}
	return count
}

type WebSocketHandler struct {
	hub        *Hub
	jwtManager *auth.JWTManager
}

func NewWebSocketHandler(jwtManager *auth.JWTManager, hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// Получаем JWT токен из query параметра
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required",
		})
		return
	}

	// Валидируем токен
	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	// Устанавливаем WebSocket соединение
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}

	client.hub.register <- client

	// Запускаем горутины для чтения и записи
	go client.writePump()
	go client.readPump()
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// readPump лише тримає з'єднання живим: сервер нічого не приймає від
// клієнта крім ping, вся доставка йде через PushToUser
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var wsMsg WSMessage
		err := c.conn.ReadJSON(&wsMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if wsMsg.Type == "ping" {
			c.enqueue([]byte(`{"type": "pong"}`))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Добавляем все ожидающие сообщения в текущее сообщение
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
