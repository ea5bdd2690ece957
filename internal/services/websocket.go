package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// UserRouter is the capability the rest of the system sees: route a payload
// to a user's live connections, if any. The hub owns all connection state.
type UserRouter interface {
	RouteToUser(userID uint, payload []byte)
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Role string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			SetUserOnline(context.Background(), client.ID, true)
			log.Printf("Client %d connected", client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			SetUserOnline(context.Background(), client.ID, false)
			log.Printf("Client %d disconnected", client.ID)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// RouteToUser sends a payload to every live connection of a specific user.
func (h *Hub) RouteToUser(userID uint, payload []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.ID == userID {
			select {
			case client.Send <- payload:
			default:
				log.Printf("Warning: could not route to client %d (channel full)", client.ID)
			}
		}
	}
}

// BroadcastToRole sends a message to all connected users with a role.
func (h *Hub) BroadcastToRole(role string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.Role == role {
			select {
			case client.Send <- message:
			default:
				log.Printf("Warning: could not send to client %d (channel full)", client.ID)
			}
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// WebSocket message types
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RequestApproved notifies a passenger that a driver took their request.
type RequestApproved struct {
	RequestID  uint   `json:"requestId"`
	TripID     uint   `json:"tripId"`
	DriverID   uint   `json:"driverId"`
	DriverName string `json:"driverName"`
}

// BookingProcessed notifies a passenger of a booking approval or decline.
type BookingProcessed struct {
	BookingID uint   `json:"bookingId"`
	TripID    uint   `json:"tripId"`
	Status    string `json:"status"`
}

// ChatMessage is a direct message delivered over the realtime channel.
type ChatMessage struct {
	MessageID uint   `json:"messageId"`
	SenderID  uint   `json:"senderId"`
	Body      string `json:"body"`
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Role: role,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames are noticed. Inbound
// traffic is not used for commands; all writes go through the REST API.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendRequestApproved routes a request-approved event to the passenger.
func (hub *Hub) SendRequestApproved(passengerID uint, approved RequestApproved) {
	message := WebSocketMessage{
		Type: "request_approved",
		Data: approved,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling request approved: %v", err)
		return
	}

	hub.RouteToUser(passengerID, data)
}

// SendBookingProcessed routes a booking decision to the passenger.
func (hub *Hub) SendBookingProcessed(passengerID uint, processed BookingProcessed) {
	message := WebSocketMessage{
		Type: "booking_processed",
		Data: processed,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling booking processed: %v", err)
		return
	}

	hub.RouteToUser(passengerID, data)
}

// SendChatMessage routes a direct message to the receiver.
func (hub *Hub) SendChatMessage(receiverID uint, msg ChatMessage) {
	message := WebSocketMessage{
		Type: "new_message",
		Data: msg,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling chat message: %v", err)
		return
	}

	hub.RouteToUser(receiverID, data)
}
