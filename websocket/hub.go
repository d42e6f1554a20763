package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Notification types pushed to the dashboards
const (
	NotificationTypeQRFAssigned  = "qrf_assigned"
	NotificationTypeQRFSubmitted = "qrf_submitted"
	NotificationTypeQRFDecided   = "qrf_decided"
	NotificationTypeQRFUnlocked  = "qrf_unlocked"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID string
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients keyed by user id
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID string, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// NotifyQRFAssigned tells an underwriter a QRF has been put on their desk.
func (h *Hub) NotifyQRFAssigned(underwriterID, referenceNumber string, data interface{}) error {
	return h.SendToUser(underwriterID, Notification{
		Type:    NotificationTypeQRFAssigned,
		Message: fmt.Sprintf("QRF %s has been assigned to you", referenceNumber),
		Data:    data,
	})
}

// NotifyQRFSubmitted tells the assigned underwriter a QRF was (re)submitted.
func (h *Hub) NotifyQRFSubmitted(underwriterID, referenceNumber string, data interface{}) error {
	return h.SendToUser(underwriterID, Notification{
		Type:    NotificationTypeQRFSubmitted,
		Message: fmt.Sprintf("QRF %s has been submitted for review", referenceNumber),
		Data:    data,
	})
}

// NotifyQRFDecided tells the owning agent their QRF was approved or rejected.
func (h *Hub) NotifyQRFDecided(agentID, referenceNumber, status string, data interface{}) error {
	return h.SendToUser(agentID, Notification{
		Type:    NotificationTypeQRFDecided,
		Message: fmt.Sprintf("QRF %s is now %s", referenceNumber, status),
		Data:    data,
	})
}
