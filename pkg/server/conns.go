package server

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/schmitti92/serverfinal/pkg/messages"
)

// Conn is one connected client. Writes are serialized per connection; the
// room binding is set on join and read by every later message.
type Conn struct {
	ID string

	ws        *websocket.Conn
	writeLock sync.Mutex

	bindLock sync.Mutex
	roomCode string
	token    string
}

// Send writes a message to the connection.
func (c *Conn) Send(msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}
	return nil
}

// Bind records the room and session token this connection acts for.
func (c *Conn) Bind(roomCode, token string) {
	c.bindLock.Lock()
	defer c.bindLock.Unlock()
	c.roomCode = roomCode
	c.token = token
}

// Binding returns the connection's current room and session token.
func (c *Conn) Binding() (roomCode, token string) {
	c.bindLock.Lock()
	defer c.bindLock.Unlock()
	return c.roomCode, c.token
}

// ConnManager tracks connected clients by connection id.
type ConnManager struct {
	lock  sync.RWMutex
	conns map[string]*Conn
}

// NewConnManager creates a new ConnManager.
func NewConnManager() *ConnManager {
	return &ConnManager{
		conns: make(map[string]*Conn),
	}
}

// Add registers a connection.
func (cm *ConnManager) Add(conn *Conn) {
	cm.lock.Lock()
	defer cm.lock.Unlock()
	cm.conns[conn.ID] = conn
}

// Remove unregisters a connection.
func (cm *ConnManager) Remove(connID string) {
	cm.lock.Lock()
	defer cm.lock.Unlock()
	delete(cm.conns, connID)
}

// Get returns a connection by id, or nil.
func (cm *ConnManager) Get(connID string) *Conn {
	cm.lock.RLock()
	defer cm.lock.RUnlock()
	return cm.conns[connID]
}

// Count returns the number of connected clients.
func (cm *ConnManager) Count() int {
	cm.lock.RLock()
	defer cm.lock.RUnlock()
	return len(cm.conns)
}
