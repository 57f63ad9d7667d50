package generators

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	conn      *websocket.Conn
	url       string
	auth      string
	mutex     sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSClient(ctx context.Context, url string, auth string) (*WSClient, error) {
	header := http.Header{}
	if auth != "" {
		header.Set("Authorization", auth)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	return &WSClient{
		conn: conn,
		url:  url,
		auth: auth,
		done: make(chan struct{}),
	}, nil
}

func (c *WSClient) reconnect() error {
	header := http.Header{}
	if c.auth != "" {
		header.Set("Authorization", c.auth)
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		return err
	}

	c.conn = conn

	return nil
}

func (c *WSClient) SendMessage(message []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.conn.WriteMessage(websocket.TextMessage, message)
	if err != nil {
		if err := c.reconnect(); err != nil {
			return err
		}

		// Retry sending the message after reconnecting
		return c.conn.WriteMessage(websocket.TextMessage, message)
	}
	return nil
}

// ReadMessages forwards every frame to messages until the connection fails or the
// client is closed, then closes messages.
func (c *WSClient) ReadMessages(messages chan<- []byte) {
	defer close(messages)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case messages <- message:
		case <-c.done:
			return
		}
	}
}

func (c *WSClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.mutex.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.mutex.Unlock()

		err = c.conn.Close()
	})
	return err
}
