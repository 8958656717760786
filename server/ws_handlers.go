package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/gorilla/websocket"
)

// WS message types.
const (
	wsStatus = "status"
	wsEvent  = "event"
	wsError  = "error"
)

// Incoming WS command.
type wsCmd struct {
	Name string `json:"name"`
	Cmd  string `json:"cmd"`
}

// Outgoing WS message.
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WS connection with serialized writes.
type wsConn struct {
	sync.Mutex
	conn *websocket.Conn
	user *providers.AuthenticatedUser
}

// Sends JSON message.
func (c *wsConn) writeJSON(data interface{}) error {
	c.Lock()
	defer c.Unlock()
	return c.conn.WriteJSON(data)
}

// Sends raw message.
func (c *wsConn) writeMessage(mt int, data []byte) error {
	c.Lock()
	defer c.Unlock()
	return c.conn.WriteMessage(mt, data)
}

// Handles WS upgrade request.
func (s *EffectsServer) handleWS(writer http.ResponseWriter, request *http.Request) {
	c, err := s.wsSettings.Upgrade(writer, request, nil)
	if err != nil {
		s.Logger.Error("Failed to establish a WS connection", err, common.LogSystemToken, logSystem)
		return
	}

	go s.processWSConnection(&wsConn{conn: c, user: requestUser(request)})
}

// Pushes status updates and events into WS connection.
func (s *EffectsServer) processWSConnection(conn *wsConn) {
	stop := make(chan bool, 1)
	go s.processIncomingWSMessages(conn, stop)

	statusSubID, statusUpd := s.Settings.FanOut().SubscribeStatusUpdates()
	defer s.Settings.FanOut().UnSubscribeStatusUpdates(statusSubID)

	eventSubID, eventUpd := s.Settings.FanOut().SubscribeEventUpdates()
	defer s.Settings.FanOut().UnSubscribeEventUpdates(eventSubID)

	for _, v := range s.state.GetEffects() {
		conn.writeJSON(&wsMessage{Type: wsStatus, Data: v.Status()}) // nolint: gosec, errcheck
	}

	for {
		select {
		case <-stop:
			return
		case msg, ok := <-statusUpd:
			if !ok {
				conn.conn.Close() // nolint: gosec, errcheck
				return
			}

			conn.writeJSON(&wsMessage{Type: wsStatus, Data: msg}) // nolint: gosec, errcheck
		case msg, ok := <-eventUpd:
			if !ok {
				conn.conn.Close() // nolint: gosec, errcheck
				return
			}

			conn.writeJSON(&wsMessage{Type: wsEvent, Data: msg}) // nolint: gosec, errcheck
		}
	}
}

// Processes incoming WS messages.
// Upgrade request context is canceled once the handler returns, so commands use a background one.
func (s *EffectsServer) processIncomingWSMessages(conn *wsConn, stop chan bool) {
	defer conn.conn.Close() // nolint: errcheck
	for {
		mt, message, err := conn.conn.ReadMessage()
		if err != nil {
			s.Logger.Debug("Closing WS connection", common.LogSystemToken, logSystem)
			stop <- true
			return
		}

		// Ping request comes as a un-wrapped string.
		if "ping" == string(message) {
			conn.writeMessage(mt, []byte("pong")) // nolint: gosec, errcheck
			continue
		}

		cmd := &wsCmd{}
		err = json.Unmarshal(message, cmd)
		if err != nil {
			s.Logger.Warn("Failed to un-marshal WS command", common.LogSystemToken, logSystem,
				common.LogErrorToken, err.Error())
			conn.writeJSON(&wsMessage{Type: wsError, Data: (&ErrBadRequest{}).Error()}) // nolint: gosec, errcheck
			continue
		}

		if err := canCommand(conn.user, cmd.Name); err != nil {
			conn.writeJSON(&wsMessage{Type: wsError, Data: err.Error()}) // nolint: gosec, errcheck
			continue
		}

		if _, err := s.invokeCommand(context.Background(), cmd.Name, cmd.Cmd); err != nil {
			conn.writeJSON(&wsMessage{Type: wsError, Data: err.Error()}) // nolint: gosec, errcheck
		}
	}
}
