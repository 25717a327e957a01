package api

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/vytor/headcount/internal/logger"
)

// wsMessage is one client action on the live game socket. The socket carries
// the same operations as the REST endpoints; a front end maps its keyboard
// and mouse events onto these actions.
type wsMessage struct {
	Action  string  `json:"action"`
	Scratch *string `json:"scratch,omitempty"`
	Total   *string `json:"total,omitempty"`
}

type wsError struct {
	Error string `json:"error"`
}

// handleGameWS upgrades to a WebSocket bound to one game session. The read
// loop exits, and the connection is torn down, on client close, session quit
// or any protocol error; nothing here outlives the request.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn("websocket accept failed for game %s: %v", session.ID(), err)
		return
	}
	defer c.CloseNow()

	log.Debug("websocket attached to game %s", session.ID())
	ctx := r.Context()

	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			log.Debug("websocket read ended for game %s: %v", session.ID(), err)
			return
		}
		s.Sessions.Touch(session.ID())

		switch msg.Action {
		case "primary":
			if msg.Scratch != nil {
				session.SetScratch(*msg.Scratch)
			}
			session.Primary()
		case "secondary":
			session.Secondary()
		case "scratch":
			if msg.Scratch != nil {
				session.SetScratch(*msg.Scratch)
			}
		case "checkpoint":
			if msg.Scratch != nil {
				session.SetScratch(*msg.Scratch)
			}
			session.RecordCheckpoint()
		case "checkpoint_back":
			session.GoToLastCheckpoint()
		case "submit":
			total := ""
			if msg.Total != nil {
				total = *msg.Total
			}
			if _, err := session.Submit(total); err != nil {
				if werr := wsjson.Write(ctx, c, wsError{Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
		case "state":
			// Snapshot reply below is the whole response.
		case "quit":
			if err := s.Sessions.Quit(ctx, session.ID(), user.ID); err != nil {
				log.Warn("quit over websocket failed: %v", err)
			}
			c.Close(websocket.StatusNormalClosure, "session quit")
			return
		default:
			if werr := wsjson.Write(ctx, c, wsError{Error: "unknown action: " + msg.Action}); werr != nil {
				return
			}
			continue
		}

		if err := wsjson.Write(ctx, c, session.Snapshot()); err != nil {
			log.Debug("websocket write ended for game %s: %v", session.ID(), err)
			return
		}
	}
}
