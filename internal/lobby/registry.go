package lobby

import (
	"strings"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/asynkron/protoactor-go/actor"
)

// roomRegistry maps a room's token string to its RoomActor PID, per
// spec.md section 4.9 ("room registry (token -> Room)"). Lock-striped via
// concurrent-map since it is read by every JoinRoom and written by every
// CreateRoom/idle-reap, from many connection goroutines concurrently.
type roomRegistry struct {
	m cmap.ConcurrentMap
}

func newRoomRegistry() *roomRegistry {
	return &roomRegistry{m: cmap.New()}
}

func (r *roomRegistry) set(token string, pid *actor.PID) {
	r.m.Set(token, pid)
}

func (r *roomRegistry) get(token string) (*actor.PID, bool) {
	v, ok := r.m.Get(token)
	if !ok {
		return nil, false
	}
	return v.(*actor.PID), true
}

func (r *roomRegistry) setIfAbsent(token string, pid *actor.PID) bool {
	return r.m.SetIfAbsent(token, pid)
}

func (r *roomRegistry) remove(token string) {
	r.m.Remove(token)
}

// forEach calls fn for every (token, PID) pair. fn must not block.
func (r *roomRegistry) forEach(fn func(token string, pid *actor.PID)) {
	for tuple := range r.m.IterBuffered() {
		fn(tuple.Key, tuple.Val.(*actor.PID))
	}
}

// nameDirectory maps a registered player name to the callback that
// delivers a wire message to their connection (spec.md section 4.7's
// "shared name -> sender directory"), and answers ToPlayer/FromPlayer
// routing without ever involving a room or session.
type nameDirectory struct {
	m cmap.ConcurrentMap
}

func newNameDirectory() *nameDirectory {
	return &nameDirectory{m: cmap.New()}
}

// register claims name for send, reporting false if the name is already
// taken (spec.md section 7, connection-init fault DuplicateName).
func (d *nameDirectory) register(name string, send func(any)) bool {
	return d.m.SetIfAbsent(name, send)
}

func (d *nameDirectory) deregister(name string) {
	d.m.Remove(name)
}

func (d *nameDirectory) send(name string, body any) bool {
	v, ok := d.m.Get(name)
	if !ok {
		return false
	}
	v.(func(any))(body)
	return true
}

// names returns every currently registered name, optionally filtered by a
// case-sensitive substring, capped at limit (spec.md section 6.4's
// search-result cap).
func (d *nameDirectory) names(filter string, hasFilter bool, limit uint8) []string {
	out := make([]string, 0, limit)
	for tuple := range d.m.IterBuffered() {
		if len(out) >= int(limit) {
			break
		}
		if hasFilter && !strings.Contains(tuple.Key, filter) {
			continue
		}
		out = append(out, tuple.Key)
	}
	return out
}
