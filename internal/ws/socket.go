package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/josemayer/werewolves/internal/game"
	"github.com/rs/zerolog/log"
)

// ConnCtx tracks which rooms a connection currently occupies.
type ConnCtx struct {
	Rooms map[int]struct{}
}

// Server is the realtime boundary: it translates socket events into
// registry/room operations and emits the results back, either to the
// originating connection or to the rest of the affected room.
type Server struct {
	registry *game.Registry

	mu      sync.Mutex
	members map[int]map[string]socketio.Conn // room code -> socket id -> conn
}

func New(registry *game.Registry) *Server {
	return &Server{registry: registry, members: make(map[int]map[string]socketio.Conn)}
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{Rooms: make(map[int]struct{})})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "create_new_room", func(s socketio.Conn, payload struct {
		Capacity int            `json:"capacity"`
		Roles    map[string]int `json:"roles"`
		Name     string         `json:"name"`
	}) map[string]any {
		room, err := srv.registry.CreateRoom(payload.Capacity, game.RoleConfig(payload.Roles))
		if err != nil {
			return srv.err(s, err)
		}
		host := game.NewPlayer(s.ID(), payload.Name, game.SeatHost)
		joined := host.Info()
		if err := room.AddMember(host); err != nil {
			srv.registry.Delete(room.Code())
			return srv.err(s, err)
		}
		srv.track(s, room.Code())
		log.Info().Str("sid", s.ID()).Int("code", room.Code()).Str("name", payload.Name).Msg("create_new_room")
		reply := map[string]any{
			"code":         room.Code(),
			"players":      room.Snapshot(),
			"roles":        room.Roles(),
			"joinedPlayer": joined,
			"playerToken":  host.Token(),
		}
		s.Emit("room_created", reply)
		return reply
	})

	io.OnEvent("/", "join_room", func(s socketio.Conn, payload struct {
		Name     string `json:"name"`
		RoomCode int    `json:"roomCode"`
	}) map[string]any {
		room, err := srv.registry.Lookup(payload.RoomCode)
		if err != nil {
			return srv.err(s, err)
		}
		p := game.NewPlayer(s.ID(), payload.Name, game.SeatParticipant)
		joined := p.Info()
		if err := room.AddMember(p); err != nil {
			return srv.err(s, err)
		}
		srv.track(s, room.Code())
		log.Info().Str("sid", s.ID()).Int("code", room.Code()).Str("name", payload.Name).Msg("join_room")
		players := room.Snapshot()
		reply := map[string]any{
			"code":         room.Code(),
			"players":      players,
			"joinedPlayer": joined,
			"playerToken":  p.Token(),
		}
		s.Emit("room_joined", reply)
		srv.broadcastExcept(room.Code(), s.ID(), "player_joined", map[string]any{"players": players})
		return reply
	})

	io.OnEvent("/", "leave_room", func(s socketio.Conn, payload struct {
		RoomCode int `json:"roomCode"`
	}) map[string]any {
		room, err := srv.registry.Lookup(payload.RoomCode)
		if err != nil {
			return srv.err(s, err)
		}
		if err := room.RemoveMember(s.ID()); err != nil {
			return srv.err(s, err)
		}
		srv.untrack(s, room.Code())
		log.Info().Str("sid", s.ID()).Int("code", room.Code()).Msg("leave_room")
		s.Emit("room_left", map[string]any{})
		if room.IsEmpty() {
			srv.registry.Delete(room.Code())
			srv.dropRoom(room.Code())
			return map[string]any{"ok": true}
		}
		srv.broadcastExcept(room.Code(), s.ID(), "player_left", map[string]any{"players": room.Snapshot()})
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "start_game", func(s socketio.Conn, payload struct {
		RoomCode int `json:"roomCode"`
	}) map[string]any {
		room, err := srv.registry.Lookup(payload.RoomCode)
		if err != nil {
			return srv.err(s, err)
		}
		grants, err := room.AssignRoles()
		if err != nil {
			return srv.err(s, err)
		}
		log.Info().Str("sid", s.ID()).Int("code", room.Code()).Int("players", len(grants)).Msg("start_game")
		// Roles go out per connection, never room-wide: each
		// participant sees only their own, the host sees everything.
		for _, g := range grants {
			conn := srv.conn(room.Code(), g.ConnID)
			if conn == nil {
				continue
			}
			if g.Seat == game.SeatHost {
				conn.Emit("game_started_host", map[string]any{
					"players": room.HostView(),
					"roles":   game.Catalog(),
				})
			} else {
				conn.Emit("game_started_player", map[string]any{"playerRole": g.Role})
			}
		}
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "resume_session", func(s socketio.Conn, payload struct {
		RoomCode    int    `json:"roomCode"`
		PlayerToken string `json:"playerToken"`
	}) map[string]any {
		room, err := srv.registry.Lookup(payload.RoomCode)
		if err != nil {
			return srv.err(s, err)
		}
		info, err := room.Resume(payload.PlayerToken, s.ID())
		if err != nil {
			return srv.err(s, err)
		}
		srv.track(s, room.Code())
		log.Info().Str("sid", s.ID()).Int("code", room.Code()).Str("name", info.Name).Msg("resume_session")
		reply := map[string]any{
			"code":         room.Code(),
			"players":      room.Snapshot(),
			"joinedPlayer": info,
		}
		s.Emit("session_resumed", reply)
		srv.broadcastExcept(room.Code(), s.ID(), "player_reconnected", map[string]any{"players": room.Snapshot()})
		return reply
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
		ctx, ok := s.Context().(*ConnCtx)
		if !ok {
			return
		}
		for code := range ctx.Rooms {
			srv.drop(code, s.ID())
		}
		if transientDisconnect(reason) {
			// The transport dropped but the client is expected back
			// with resume_session; keep the seat, flag it offline.
			for code := range ctx.Rooms {
				if room, err := srv.registry.Lookup(code); err == nil {
					_ = room.MarkConnected(s.ID(), false)
				}
			}
			return
		}
		for code := range ctx.Rooms {
			srv.sweep(code, s.ID())
		}
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// sweep removes one dropped connection from one room, mirroring
// leave_room. Races with an earlier leave are expected and skipped
// without aborting cleanup of the connection's other rooms.
func (srv *Server) sweep(code int, connID string) {
	room, err := srv.registry.Lookup(code)
	if err != nil {
		log.Warn().Int("code", code).Str("sid", connID).Err(err).Msg("disconnect sweep: room gone")
		return
	}
	if err := room.RemoveMember(connID); err != nil {
		log.Warn().Int("code", code).Str("sid", connID).Err(err).Msg("disconnect sweep: member gone")
		return
	}
	if room.IsEmpty() {
		srv.registry.Delete(code)
		srv.dropRoom(code)
		return
	}
	srv.broadcast(code, "player_left", map[string]any{"players": room.Snapshot()})
}

// transientDisconnect reports whether the disconnect reason is a
// transport-level drop the client is expected to recover from, as
// opposed to an intentional close; only the latter unseats the player.
func transientDisconnect(reason string) bool {
	switch reason {
	case "ping timeout", "transport error":
		return true
	}
	return false
}

func (srv *Server) track(s socketio.Conn, code int) {
	if ctx, ok := s.Context().(*ConnCtx); ok {
		ctx.Rooms[code] = struct{}{}
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][s.ID()] = s
}

func (srv *Server) untrack(s socketio.Conn, code int) {
	if ctx, ok := s.Context().(*ConnCtx); ok {
		delete(ctx.Rooms, code)
	}
	srv.drop(code, s.ID())
}

func (srv *Server) drop(code int, connID string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(srv.members, code)
		}
	}
}

func (srv *Server) dropRoom(code int) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	delete(srv.members, code)
}

func (srv *Server) conn(code int, connID string) socketio.Conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		return m[connID]
	}
	return nil
}

func (srv *Server) conns(code int) []socketio.Conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	out := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		out = append(out, c)
	}
	return out
}

func (srv *Server) broadcast(code int, event string, payload map[string]any) {
	for _, c := range srv.conns(code) {
		c.Emit(event, payload)
	}
}

func (srv *Server) broadcastExcept(code int, connID, event string, payload map[string]any) {
	for _, c := range srv.conns(code) {
		if c.ID() == connID {
			continue
		}
		c.Emit(event, payload)
	}
}

// err reports a failure to the originating connection only.
func (srv *Server) err(s socketio.Conn, err error) map[string]any {
	log.Warn().Str("sid", s.ID()).Err(err).Msg("request failed")
	s.Emit("error", map[string]any{"message": err.Error()})
	return map[string]any{"error": err.Error()}
}
