package daemon

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"velociplayer/internal/logging"
	"velociplayer/internal/playback"
)

const (
	streamBuffer = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleStream pushes every caption change to a websocket client, starting
// with the caption active when the client connects. A client that falls
// more than streamBuffer changes behind is disconnected.
func (s *apiServer) handleStream(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithContext(r.Context(), s.logger)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	updates := make(chan playback.Change, streamBuffer)
	lagged := make(chan struct{})
	var lagOnce sync.Once
	subID, cancel := s.daemon.adapter.Subscribe(playback.ObserverFunc(func(c playback.Change) {
		select {
		case updates <- c:
		default:
			lagOnce.Do(func() { close(lagged) })
		}
	}))
	defer cancel()

	snap := s.daemon.adapter.Snapshot()
	logger = logger.With(logging.String("subscription", subID))
	logger.Debug("caption stream opened", logging.Uint64("seq", snap.Seq))
	defer logger.Debug("caption stream closed")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(c playback.Change) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(c); err != nil {
			logger.Debug("caption stream write failed", logging.Error(err))
			return false
		}
		return true
	}
	closeWith := func(code int, text string) {
		msg := websocket.FormatCloseMessage(code, text)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}

	if !write(playback.Change{Seq: snap.Seq, Caption: snap.Caption}) {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case c := <-updates:
			// Changes up to the snapshot are already reflected in the first message.
			if c.Seq <= snap.Seq {
				continue
			}
			if !write(c) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-lagged:
			logger.Warn("caption stream client too slow; disconnecting")
			closeWith(websocket.ClosePolicyViolation, "client too slow")
			return
		case <-s.shutdownSignal():
			closeWith(websocket.CloseGoingAway, "server shutting down")
			return
		case <-closed:
			return
		}
	}
}
