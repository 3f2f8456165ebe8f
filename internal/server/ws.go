package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type createRoomRequest struct {
	DisplayName string `json:"displayName"`
}

type joinRoomRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

type startGameRequest struct {
	RoomID string `json:"roomId"`
}

type submitAnswerRequest struct {
	RoomID          string `json:"roomId"`
	QuestionID      string `json:"questionId"`
	OptionIndex     int    `json:"optionIndex"`
	ClientTimestamp int64  `json:"clientTimestamp"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WSHandler upgrades the connection, mints the ephemeral player identity,
// and runs the read/write pumps. Leaving the room on disconnect is handled
// here so the transport-driven disconnect and an explicit leave-room share
// one code path.
func WSHandler(srv *Server, hub *Hub, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		playerID := uuid.New()
		ctx, cancel := context.WithCancel(r.Context())
		conn := &Conn{
			PlayerID: playerID,
			out:      make(chan envelope, 16),
		}
		hub.Add(conn)
		logger.WithFields(logrus.Fields{
			"player": playerID,
			"remote": r.RemoteAddr,
		}).Info("player connected")

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, srv, conn, logger)

		hub.Remove(playerID)
		srv.HandleLeaveRoom(playerID)
		cancel()
		logger.WithField("player", playerID).Info("player disconnected")
	}
}

// readPump decodes inbound envelopes and dispatches them to the
// orchestrator until the connection drops.
func readPump(ctx context.Context, c *websocket.Conn, srv *Server, conn *Conn, logger *logrus.Logger) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return
			}
			logger.WithField("player", conn.PlayerID).Warnf("read error: %v", err)
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var in inboundMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			conn.send(logger, envelope{Type: EventError, Data: errorPayload{Message: "invalid JSON"}})
			continue
		}
		dispatch(srv, conn.PlayerID, in, conn, logger)
	}
}

func dispatch(srv *Server, playerID uuid.UUID, in inboundMessage, conn *Conn, logger *logrus.Logger) {
	switch in.Type {
	case ActionCreateRoom:
		var req createRoomRequest
		if !decode(in.Data, &req, conn, logger) {
			return
		}
		srv.HandleCreateRoom(playerID, req.DisplayName)
	case ActionJoinRoom:
		var req joinRoomRequest
		if !decode(in.Data, &req, conn, logger) {
			return
		}
		srv.HandleJoinRoom(playerID, req.Code, req.DisplayName)
	case ActionStartGame:
		var req startGameRequest
		if !decode(in.Data, &req, conn, logger) {
			return
		}
		roomID, err := uuid.Parse(req.RoomID)
		if err != nil {
			conn.send(logger, envelope{Type: EventError, Data: errorPayload{Message: "invalid roomId"}})
			return
		}
		srv.HandleStartGame(playerID, roomID)
	case ActionSubmitAnswer:
		var req submitAnswerRequest
		if !decode(in.Data, &req, conn, logger) {
			return
		}
		roomID, err := uuid.Parse(req.RoomID)
		if err != nil {
			conn.send(logger, envelope{Type: EventError, Data: errorPayload{Message: "invalid roomId"}})
			return
		}
		srv.HandleSubmitAnswer(playerID, roomID, req.QuestionID, req.OptionIndex, req.ClientTimestamp)
	case ActionLeaveRoom:
		srv.HandleLeaveRoom(playerID)
	default:
		conn.send(logger, envelope{Type: EventError, Data: errorPayload{Message: "unknown action: " + in.Type}})
	}
}

func decode(raw json.RawMessage, dst any, conn *Conn, logger *logrus.Logger) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		conn.send(logger, envelope{Type: EventError, Data: errorPayload{Message: "invalid payload"}})
		return false
	}
	return true
}

// writePump drains the connection's outbound queue onto the socket and
// keeps the connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.WithField("player", conn.PlayerID).Warnf("marshal outbound: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
