// Package lobby implements spec.md section 4.9: the shared registries
// (room registry, name directory, per-IP connection tracking), the
// accept-loop admission gate, room creation/token allocation, and the
// idle-room reaper. Grounded on the teacher's TCPServer accept loop
// (server/internal/network/network.go) for the accept/shutdown shape.
package lobby

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"golang.org/x/time/rate"

	"github.com/wuziqi-io/gomoku-server/internal/config"
	"github.com/wuziqi-io/gomoku-server/internal/credstore"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/metrics"
	"github.com/wuziqi-io/gomoku-server/internal/room"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// Lobby owns the server-wide shared state: the room registry, the name
// directory, the per-IP connection cap, and admission rate limiting. It is
// not a protoactor actor itself — connections call it directly, and it
// spawns RoomActors as top-level actors in the shared system.
type Lobby struct {
	system  *actor.ActorSystem
	Creds   credstore.Store
	cfg     *config.Config
	metrics *metrics.Registry

	rooms *roomRegistry
	names *nameDirectory
	ips   ipTracker

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	tokenMu  sync.Mutex
	tokenRNG *rand.Rand

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New builds a Lobby. If cfg.Redis.Address is empty, the per-IP connection
// tracker is in-process only. reg may be nil, in which case no metrics are
// recorded.
func New(system *actor.ActorSystem, creds credstore.Store, cfg *config.Config, reg *metrics.Registry) *Lobby {
	var tracker ipTracker
	if cfg.Redis.Address != "" {
		tracker = newRedisIPTracker(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		tracker = newMemoryIPTracker()
	}

	return &Lobby{
		system:   system,
		Creds:    creds,
		cfg:      cfg,
		metrics:  reg,
		rooms:    newRoomRegistry(),
		names:    newNameDirectory(),
		ips:      tracker,
		limiters: make(map[string]*rate.Limiter),
		tokenRNG: rand.New(rand.NewSource(time.Now().UnixNano())),
		shutdown: make(chan struct{}),
	}
}

func (l *Lobby) limiterFor(ip string) *rate.Limiter {
	l.limiterMu.Lock()
	defer l.limiterMu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(5, 10) // 5/s sustained, burst of 10 connection attempts
		l.limiters[ip] = lim
	}
	return lim
}

// Allow applies per-IP admission rate limiting, ahead of the hard cap.
func (l *Lobby) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}

// AcquireIP enforces the per-IP concurrent connection cap of spec.md
// section 6.4.
func (l *Lobby) AcquireIP(ip string) bool {
	return l.ips.tryAcquire(ip, l.cfg.Limits.PerIPMaxConnections)
}

// ReleaseIP must be called exactly once for every successful AcquireIP.
func (l *Lobby) ReleaseIP(ip string) {
	l.ips.release(ip)
	if l.metrics != nil {
		l.metrics.ActiveConnections.Dec()
	}
}

// Send lets a connection address a room or player actor PID directly,
// without reaching into the shared ActorSystem itself.
func (l *Lobby) Send(pid *actor.PID, msg any) {
	l.system.Root.Send(pid, msg)
}

// RegisterName claims name in the shared directory, reporting false if it
// is already taken.
func (l *Lobby) RegisterName(name string, send func(any)) bool {
	return l.names.register(name, send)
}

func (l *Lobby) DeregisterName(name string) {
	l.names.deregister(name)
}

// SendToPlayer implements ToPlayer's short-circuit routing (spec.md
// section 4.7): delivered as FromPlayer directly to the target's
// connection, without ever reaching a room.
func (l *Lobby) SendToPlayer(fromName, toName string, message []byte) bool {
	return l.names.send(toName, wire.FromPlayer{Name: fromName, Message: message})
}

// SearchPlayers implements SearchOnlinePlayers, capped at the configured
// limit regardless of what the client requested.
func (l *Lobby) SearchPlayers(filter string, hasFilter bool, limit uint8) []string {
	cap := l.cfg.Limits.SearchResultCap
	if limit < cap {
		cap = limit
	}
	return l.names.names(filter, hasFilter, cap)
}

// CreateRoom allocates a fresh token by random draw until one is vacant
// (spec.md section 8 property 4 / scenario S5), spawns its RoomActor, and
// auto-joins the creator.
func (l *Lobby) CreateRoom(creator room.Seat, sessionCfg wire.SessionConfig) (wire.RoomToken, *actor.PID) {
	var token wire.RoomToken
	var pid *actor.PID
	for {
		l.tokenMu.Lock()
		token = wire.RandomToken(l.tokenRNG)
		l.tokenMu.Unlock()

		candidate := l.system.Root.Spawn(room.NewRoomActorProps(nil, token, sessionCfg, l.metrics))
		if l.rooms.setIfAbsent(token.String(), candidate) {
			pid = candidate
			break
		}
		// Extremely unlikely collision: stop the redundant actor and redraw.
		l.system.Root.Stop(candidate)
	}
	if l.metrics != nil {
		l.metrics.ActiveRooms.Inc()
	}

	l.system.Root.Send(pid, &room.Join{Seat: creator})
	return token, pid
}

// JoinRoom looks up token and, if found, forwards seat's join and returns
// the room's PID so the caller can address later Ready/Unready/Leave/Chat
// messages directly. ok is false if the token is not registered.
func (l *Lobby) JoinRoom(token wire.RoomToken, seat room.Seat) (pid *actor.PID, ok bool) {
	pid, ok = l.rooms.get(token.String())
	if !ok {
		return nil, false
	}
	l.system.Root.Send(pid, &room.Join{Seat: seat})
	return pid, true
}

// StartIdleReaper launches the background goroutine that removes rooms
// whose both seats have been empty past the configured threshold (spec.md
// section 4.9 / section 8 property 8). Call Stop to end it.
func (l *Lobby) StartIdleReaper() {
	interval := time.Duration(l.cfg.Room.IdleReapIntervalSeconds) * time.Second
	threshold := int64(l.cfg.Room.IdleThresholdSeconds)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-l.shutdown:
				return
			case <-ticker.C:
				l.reapIdleRooms(threshold)
			}
		}
	}()
}

func (l *Lobby) reapIdleRooms(threshold int64) {
	now := time.Now().Unix()
	var stale []string
	l.rooms.forEach(func(token string, pid *actor.PID) {
		reply := make(chan room.State, 1)
		l.system.Root.Send(pid, &room.StateQuery{Reply: reply})
		select {
		case state := <-reply:
			if state.Occupied == 0 && !state.InSession && state.IdleSince != 0 && now-state.IdleSince >= threshold {
				stale = append(stale, token)
				l.system.Root.Stop(pid)
			}
		case <-time.After(2 * time.Second):
			logging.For("lobby").Error("room never answered state query during reap", "token", token)
		}
	})
	for _, token := range stale {
		l.rooms.remove(token)
		if l.metrics != nil {
			l.metrics.ActiveRooms.Dec()
		}
	}
}

// Serve runs the accept loop on ln. handle is invoked in its own goroutine
// per accepted connection; admitted reports whether the connection passed
// the rate limiter and the per-IP cap — if false, handle is still called
// (so a ConnectionInitFailure frame can be written) but must not proceed
// past authentication, and must not call ReleaseIP.
func (l *Lobby) Serve(ln net.Listener, handle func(conn net.Conn, ip string, admitted bool)) {
	l.wg.Add(1)
	defer l.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-l.shutdown:
				return
			default:
				logging.For("lobby").Error("accept failed", "err", err)
				continue
			}
		}

		ip, _, err := net.SplitHostPort(conn.RemoteAddr().String())
		if err != nil {
			ip = conn.RemoteAddr().String()
		}
		allowed := l.Allow(ip)
		admitted := allowed && l.AcquireIP(ip)

		if l.metrics != nil {
			switch {
			case admitted:
				l.metrics.ConnectionsAccepted.Inc()
				l.metrics.ActiveConnections.Inc()
			case !allowed:
				l.metrics.ConnectionsRejected.WithLabelValues("rate_limited").Inc()
			default:
				l.metrics.ConnectionsRejected.WithLabelValues("ip_cap").Inc()
			}
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			handle(conn, ip, admitted)
		}()
	}
}

// Stop signals Serve and the idle reaper to exit and waits for both.
func (l *Lobby) Stop(ln net.Listener) {
	close(l.shutdown)
	if ln != nil {
		ln.Close()
	}
	l.wg.Wait()
}
