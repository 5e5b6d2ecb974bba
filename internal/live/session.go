// Package live serves an interactive evaluation session over a websocket:
// each "evaluate" message is answered with a fresh calculation, so a form
// with sliders can follow the maximum length as the user moves them.
package live

import (
	"encoding/json"
	"net/http"
	"time"

	"Hydra/internal/calc/pipelength"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	TypeEvaluate  = "evaluate"
	TypeResult    = "result"
	TypeMaterials = "materials"
	TypePumps     = "pumps"
	TypeError     = "error"

	writeWait   = 10 * time.Second
	maxMessage  = 64 << 10
	queueLength = 10
)

type Msg struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"` // echoed back so clients can drop stale answers
	Content json.RawMessage `json:"content,omitempty"`
}

type errorContent struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type Server struct {
	Upgrader websocket.Upgrader
	Calc     *pipelength.Calculator
}

func NewServer(calc *pipelength.Calculator) *Server {
	return &Server{
		Upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		Calc:     calc,
	}
}

// session owns one connection: the read loop queues requests, handleRequest
// answers them and handleResponse is the only writer.
type session struct {
	conn     *websocket.Conn
	calc     *pipelength.Calculator
	requests chan Msg
	replies  chan Msg
}

func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessage)

	ss := &session{
		conn:     conn,
		calc:     s.Calc,
		requests: make(chan Msg, queueLength),
		replies:  make(chan Msg, queueLength),
	}
	done := make(chan struct{})
	go ss.handleRequest()
	go func() {
		ss.handleResponse()
		close(done)
	}()

	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("live session closed")
			}
			break
		}
		ss.requests <- msg
	}
	close(ss.requests)
	<-done
}

func (ss *session) handleRequest() {
	defer close(ss.replies)
	for msg := range ss.requests {
		ss.replies <- ss.answer(msg)
	}
}

func (ss *session) handleResponse() {
	for reply := range ss.replies {
		ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ss.conn.WriteJSON(&reply); err != nil {
			log.WithError(err).Warn("live session write failed")
			// keep draining so handleRequest never blocks
			for range ss.replies {
			}
			return
		}
	}
}

func (ss *session) answer(msg Msg) Msg {
	switch msg.Type {
	case TypeEvaluate:
		var in pipelength.Input
		if err := json.Unmarshal(msg.Content, &in); err != nil {
			return errorMsg(msg.ID, "invalid content", http.StatusBadRequest)
		}
		res, err := ss.calc.Calculate(in)
		if err != nil {
			return errorMsg(msg.ID, err.Error(), pipelength.StatusFor(err))
		}
		return reply(TypeResult, msg.ID, res)
	case TypeMaterials:
		return reply(TypeMaterials, msg.ID, ss.calc.Catalog.Pipes.All())
	case TypePumps:
		return reply(TypePumps, msg.ID, ss.calc.Catalog.Pumps.All())
	}
	return errorMsg(msg.ID, "no such type: "+msg.Type, http.StatusBadRequest)
}

func reply(typ, id string, v any) Msg {
	data, err := json.Marshal(v)
	if err != nil {
		return errorMsg(id, err.Error(), http.StatusInternalServerError)
	}
	return Msg{Type: typ, ID: id, Content: data}
}

func errorMsg(id, text string, status int) Msg {
	data, _ := json.Marshal(errorContent{Error: text, Status: status})
	return Msg{Type: TypeError, ID: id, Content: data}
}
