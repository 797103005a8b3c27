package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// connWrapper guards writes to the underlying connection. The write
// pump and direct error replies may race; gorilla allows at most one
// concurrent writer.
type connWrapper struct {
	conn *websocket.Conn

	mu sync.Mutex
}

func newConnWrapper(conn *websocket.Conn) *connWrapper {
	return &connWrapper{conn: conn}
}

func (w *connWrapper) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}
