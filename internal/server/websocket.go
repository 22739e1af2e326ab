package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/conneroisu/matchscan/internal/events"
	"github.com/conneroisu/matchscan/internal/scanner"
	"github.com/conneroisu/matchscan/internal/validation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client actions.
const (
	ActionStart  = "start"
	ActionCancel = "cancel"
)

// Message kinds sent besides run events.
const (
	KindFinished = "finished"
	KindError    = "error"
)

// ClientMessage is a request from a websocket client.
type ClientMessage struct {
	Action string `json:"action"`
}

// StatusMessage closes a run or reports a rejected request.
type StatusMessage struct {
	Kind    string `json:"kind"`
	RunID   string `json:"run_id,omitempty"`
	State   string `json:"state,omitempty"`
	Scanned int    `json:"scanned,omitempty"`
	Matched int    `json:"matched,omitempty"`
	Output  string `json:"output,omitempty"`
	Message string `json:"message,omitempty"`
}

// session is one websocket connection. Writes come from the read loop and
// from the run's event pump, so they are serialized.
type session struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *session) write(ctx context.Context, v interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, c.conn, v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins(),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxMessageSize)

	// Closing the connection cancels a run it started.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &session{conn: conn}
	s.readPump(ctx, client)
}

// readPump handles client requests until the connection closes.
func (s *Server) readPump(ctx context.Context, client *session) {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, client.conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				s.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}

		switch strings.ToLower(strings.TrimSpace(msg.Action)) {
		case ActionStart:
			s.startRun(ctx, client)
		case ActionCancel:
			if !s.cancel() {
				_ = client.write(ctx, StatusMessage{Kind: KindError, Message: "no run in progress"})
			}
		default:
			_ = client.write(ctx, StatusMessage{Kind: KindError, Message: fmt.Sprintf("unknown action %q", msg.Action)})
		}
	}
}

// startRun launches a run whose events stream to client. It does not wait
// for the run so the client can still send a cancel.
func (s *Server) startRun(ctx context.Context, client *session) {
	runCtx, cancel := context.WithCancel(ctx)
	done, ok := s.claimRun(cancel)
	if !ok {
		cancel()
		_ = client.write(ctx, StatusMessage{Kind: KindError, Message: scanner.ErrRunInProgress.Error()})
		return
	}

	job, err := s.jobs()
	if err != nil {
		cancel()
		s.releaseRun(done)
		_ = client.write(ctx, StatusMessage{Kind: KindError, Message: err.Error()})
		return
	}

	sink := events.NewChannelSink(64)
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		// drain fully even after a write fails so the sink can close
		for e := range sink.Events() {
			_ = client.write(ctx, e)
		}
	}()

	go func() {
		defer s.releaseRun(done)
		defer cancel()

		report, err := s.runner.Run(runCtx, job, sink)
		sink.Close()
		<-pumped

		status := StatusMessage{Kind: KindFinished}
		if report != nil {
			status.RunID = report.RunID
			status.State = report.State.String()
			status.Scanned = report.Scanned
			status.Matched = report.Matched
			status.Output = report.Paths.Primary
		}
		if err != nil {
			status.Message = err.Error()
			s.logger.Warn(ctx, err, "Run ended with error")
		}
		if werr := client.write(context.WithoutCancel(ctx), status); werr != nil {
			s.logger.Debug(ctx, "Finished message not delivered", "error", werr.Error())
		}
	}()
}

// allowedOrigins lists the host patterns websocket clients may connect from.
func (s *Server) allowedOrigins() []string {
	return []string{
		fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		fmt.Sprintf("localhost:%d", s.config.Port),
		fmt.Sprintf("127.0.0.1:%d", s.config.Port),
	}
}

// checkOrigin accepts http(s) origins served by this server.
func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := append([]string{r.Host}, s.allowedOrigins()...)
	if err := validation.ValidateOrigin(r.Header.Get("Origin"), allowed); err != nil {
		s.logger.Debug(r.Context(), "WebSocket origin rejected", "error", err.Error())
		return false
	}
	return true
}
