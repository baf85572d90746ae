package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/metrics"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/splits"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 5 * time.Second
)

// Stream message types.
const (
	MessageConnected = "connected"
	MessagePending   = "pending"
	MessageQuote     = "quote"
	MessageError     = "error"
)

// StreamMessage is every frame the quote stream sends. Quote is null when the
// latest input asks for no quote.
type StreamMessage struct {
	Type       string       `json:"type"`
	ClientID   string       `json:"clientId,omitempty"`
	Generation uint64       `json:"generation,omitempty"`
	Quote      *quote.Quote `json:"quote,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *streamConn) send(msg StreamMessage) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sc.conn.WriteJSON(msg)
}

func (sc *streamConn) ping() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// quoteStream upgrades to a websocket carrying one quote session. Every
// intent the client sends replaces the previous one; only the quote of the
// latest intent is ever delivered. Split names are resolved per connection
// before the intent reaches the session.
func (s *Server) quoteStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.l.WithField("error", err).Warn("websocket upgrade failed")
		return
	}
	clientID := uuid.New().String()
	log := s.l.WithField("client", clientID)
	metrics.WebsocketClients.Inc()
	defer metrics.WebsocketClients.Dec()

	sc := &streamConn{conn: conn}
	session := quote.NewSession(c.Request.Context(), s.engine, s.debounce, s.l)
	tracker := s.engine.SplitTracker()
	done := make(chan struct{})
	defer func() {
		close(done)
		session.Close()
		conn.Close()
		log.Debug("quote stream closed")
	}()

	if err := sc.send(StreamMessage{Type: MessageConnected, ClientID: clientID}); err != nil {
		return
	}
	log.Debug("quote stream opened")

	go forwardResults(sc, session, log)
	go keepAlive(sc, done, log)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("error", err).Debug("quote stream read failed")
			}
			return
		}
		var in quote.Intent
		if err := json.Unmarshal(data, &in); err != nil {
			if err := sc.send(StreamMessage{Type: MessageError, Error: "malformed intent: " + err.Error()}); err != nil {
				return
			}
			continue
		}
		if len(in.Splits) > 0 && tracker != nil {
			resolved, err := tracker.Resolve(c.Request.Context(), in.Splits)
			if errors.Is(err, splits.ErrStale) {
				continue
			}
			if err != nil {
				if err := sc.send(StreamMessage{Type: MessageError, Error: err.Error()}); err != nil {
					return
				}
				continue
			}
			in.Splits = resolved
		}
		gen := session.Update(in)
		if err := sc.send(StreamMessage{Type: MessagePending, Generation: gen}); err != nil {
			return
		}
	}
}

func forwardResults(sc *streamConn, session *quote.Session, log *logrus.Entry) {
	for res := range session.Results() {
		msg := StreamMessage{Type: MessageQuote, Generation: res.Generation, Quote: res.Quote}
		if res.Err != nil {
			msg = StreamMessage{Type: MessageError, Generation: res.Generation, Error: res.Err.Error()}
		}
		if err := sc.send(msg); err != nil {
			log.WithField("error", err).Debug("quote stream write failed")
			return
		}
	}
}

func keepAlive(sc *streamConn, done <-chan struct{}, log *logrus.Entry) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sc.ping(); err != nil {
				log.WithField("error", err).Debug("quote stream ping failed")
				return
			}
		}
	}
}
