package ui

import (
	"net/http"

	"github.com/ericogr/accel-logger/pkg/broker"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type wsMessage struct {
	Type string         `json:"type"`
	Data broker.Message `json:"data"`
}

// websocket streams live samples and notices until the client goes away.
func (s *Server) websocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "Closed unexpectedly")
	}()

	ctx := conn.CloseRead(c.Request.Context())

	msgCh := s.broker.Subscribe()
	defer s.broker.Unsubscribe(msgCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case msg := <-msgCh:
			switch msg.(type) {
			case broker.Sample, broker.Notice:
				if err := wsjson.Write(ctx, conn, wsMessage{Type: msg.Name(), Data: msg}); err != nil {
					s.logger.Printf("ws: %v", errors.Wrap(err, "write"))
					return
				}
			}
		}
	}
}
