// Package bridge exposes the roster engine to remote clients over websockets.
// Each connection is one viewer; every roster operation for it is pushed as a
// JSON Message.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jask/rostertab/internal/logs"
	"github.com/jask/rostertab/internal/roster"
)

// DefaultWriteWait bounds a single websocket write.
const DefaultWriteWait = 5 * time.Second

// ErrNotConnected is returned when sending to a viewer without a live connection.
var ErrNotConnected = errors.New("bridge: viewer not connected")

type Options struct {
	Population *roster.MemberSet
	WriteWait  time.Duration
	Logger     *slog.Logger
}

// Server is a roster.Sender backed by websocket connections.
type Server struct {
	population *roster.MemberSet
	writeWait  time.Duration
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	engine  *roster.Engine
	clients map[uuid.UUID]*client
}

func New(opts Options) *Server {
	s := &Server{
		population: opts.Population,
		writeWait:  opts.WriteWait,
		logger:     opts.Logger,
		clients:    make(map[uuid.UUID]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if s.population == nil {
		s.population = roster.NewMemberSet()
	}
	if s.writeWait <= 0 {
		s.writeWait = DefaultWriteWait
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Attach sets the engine connections join. It must be called before serving.
func (s *Server) Attach(e *roster.Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
}

func (s *Server) Population() *roster.MemberSet { return s.population }

// Connected is the number of live connections.
func (s *Server) Connected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler routes /roster and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/roster", s.handleRoster)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("bridge listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown bridge: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"viewers": s.Connected()})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := uuid.Parse(q.Get("viewer"))
	if err != nil {
		http.Error(w, "viewer must be a uuid", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine == nil {
		http.Error(w, "engine not ready", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "viewer", name, "err", err)
		return
	}

	var perms []string
	for _, p := range strings.Split(q.Get("perm"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	s.population.Put(&roster.Member{UUID: id, Username: name, Permissions: perms})

	c := &client{id: id, name: name, population: s.population, conn: conn, writeWait: s.writeWait}
	s.register(c)
	ctx := logs.With(r.Context(), "viewer", name)

	if err := engine.Join(c); err != nil {
		s.logger.WarnContext(ctx, "join failed", "err", err)
		_ = c.write(Message{Op: OpError, Error: err.Error()})
		s.drop(c)
		s.population.Remove(id)
		return
	}

	s.readLoop(ctx, engine, c)

	s.drop(c)
	if !c.replaced.Load() {
		engine.Quit(id)
		s.population.Remove(id)
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	prev := s.clients[c.id]
	s.clients[c.id] = c
	s.mu.Unlock()
	if prev != nil {
		prev.replaced.Store(true)
		_ = prev.conn.Close()
	}
}

// drop forgets c and closes its connection. A newer connection for the same
// viewer is left alone.
func (s *Server) drop(c *client) {
	s.mu.Lock()
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
	}
	s.mu.Unlock()
	_ = c.conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()
	for _, c := range list {
		_ = c.conn.Close()
	}
}

func (s *Server) readLoop(ctx context.Context, engine *roster.Engine, c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.DebugContext(ctx, "connection closed", "err", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.WarnContext(ctx, "bad client message", "err", err)
			continue
		}
		if err := s.apply(engine, c, msg); err != nil {
			s.logger.WarnContext(ctx, "client update failed", "op", msg.Op, "err", err)
			_ = c.write(Message{Op: OpError, Error: err.Error()})
		}
	}
}

func (s *Server) apply(engine *roster.Engine, c *client, msg ClientMessage) error {
	switch msg.Op {
	case OpSetGameMode:
		mode, err := roster.ParseGameMode(msg.Mode)
		if err != nil {
			return err
		}
		s.population.Update(c.id, func(m *roster.Member) { m.Mode = mode })
		return engine.GameModeChanged(c.id, mode)
	case OpSetPermissions:
		s.population.Update(c.id, func(m *roster.Member) { m.Permissions = msg.Permissions })
		return engine.Reselect(c)
	case OpSetVars:
		s.population.Update(c.id, func(m *roster.Member) { m.Vars = msg.Vars })
		return nil
	case OpSetLocation:
		s.population.Update(c.id, func(m *roster.Member) { m.Location = msg.Location })
		return nil
	case OpSetHidden:
		s.population.Update(c.id, func(m *roster.Member) { m.Hidden = msg.Hidden })
		return nil
	default:
		return fmt.Errorf("unknown op %q", msg.Op)
	}
}

// send writes msg to v's connection; a failed write disconnects the viewer.
func (s *Server) send(v roster.Viewer, msg Message) error {
	s.mu.Lock()
	c, ok := s.clients[v.ID()]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, v.Name())
	}
	if err := c.write(msg); err != nil {
		s.drop(c)
		return fmt.Errorf("write %s: %w", msg.Op, err)
	}
	return nil
}

func (s *Server) AddEntries(v roster.Viewer, entries []roster.Entry) error {
	out := make([]EntryMessage, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryMessage{
			Cell:   cellOf(e.Identity),
			Text:   e.Text,
			Ping:   e.Ping.Millis(),
			Mode:   e.Mode.String(),
			Avatar: avatarOf(e.Avatar),
		})
	}
	return s.send(v, Message{Op: OpAdd, Entries: out})
}

func (s *Server) RemoveEntries(v roster.Viewer, ids []roster.Identity) error {
	cells := make([]Cell, 0, len(ids))
	for _, id := range ids {
		cells = append(cells, cellOf(id))
	}
	return s.send(v, Message{Op: OpRemove, Cells: cells})
}

func (s *Server) SetText(v roster.Viewer, id roster.Identity, text string) error {
	cell := cellOf(id)
	return s.send(v, Message{Op: OpText, Cell: &cell, Text: text})
}

func (s *Server) SetPing(v roster.Viewer, id roster.Identity, ping roster.Ping) error {
	cell := cellOf(id)
	ms := ping.Millis()
	return s.send(v, Message{Op: OpPing, Cell: &cell, Ping: &ms})
}

func (s *Server) SetAvatar(v roster.Viewer, id roster.Identity, avatar roster.Avatar) error {
	cell := cellOf(id)
	return s.send(v, Message{Op: OpAvatar, Cell: &cell, Avatar: avatarOf(&avatar)})
}

func (s *Server) HideAvatar(v roster.Viewer, id roster.Identity) error {
	cell := cellOf(id)
	return s.send(v, Message{Op: OpHideAvatar, Cell: &cell})
}

func (s *Server) SetHeaderFooter(v roster.Viewer, header, footer string) error {
	return s.send(v, Message{Op: OpHeaderFooter, Header: header, Footer: footer})
}

func (s *Server) SetGameMode(viewers []roster.Viewer, subject uuid.UUID, mode roster.GameMode) error {
	msg := Message{Op: OpGameMode, Subject: subject.String(), Mode: mode.String()}
	var errs []error
	for _, v := range viewers {
		if err := s.send(v, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// client is one connected viewer. Permissions are read from the population so
// updates apply to the next render pass.
type client struct {
	id         uuid.UUID
	name       string
	population *roster.MemberSet
	conn       *websocket.Conn
	writeWait  time.Duration
	// replaced is set when a newer connection took over the viewer.
	replaced atomic.Bool

	mu sync.Mutex
}

func (c *client) ID() uuid.UUID { return c.id }
func (c *client) Name() string  { return c.name }

func (c *client) HasPermission(perm string) bool {
	m, ok := c.population.Member(c.id)
	return ok && m.HasPermission(perm)
}

// write sends one message guarded by the client's mutex and write deadline.
func (c *client) write(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
