package mesh

import (
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
)

// pausableTimer is a single-shot alarm that accumulates elapsed time across
// pause/resume cycles and can be extended with an extra-time credit on
// resume, per spec.md section 9 ("Pausable one-shot timers"). It never
// blocks its owner: arming spawns a goroutine that sleeps and then delivers
// a message to pid through the actor system, the same way any other event
// reaches a protoactor actor's mailbox.
//
// A monotonically increasing sequence number invalidates stale alarms: Pause
// and Cancel both bump it, so a goroutine that wakes up after being paused
// (or after a later Arm) finds its observed sequence stale and delivers
// nothing.
type pausableTimer struct {
	mu        sync.Mutex
	system    *actor.ActorSystem
	pid       *actor.PID
	newMsg    func() interface{}
	remaining time.Duration
	noTimeout bool // armed with a delay of 0: never fires, not even after Resume
	running   bool
	startedAt time.Time
	seq       uint64
}

func newPausableTimer(system *actor.ActorSystem, pid *actor.PID, newMsg func() interface{}) *pausableTimer {
	return &pausableTimer{system: system, pid: pid, newMsg: newMsg}
}

// Arm starts the timer fresh with the given total delay. A delay of 0 means
// "no timeout": Arm records it but never schedules a sleep.
func (t *pausableTimer) Arm(delay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.remaining = delay
	t.running = true
	t.startedAt = time.Now()
	t.noTimeout = delay <= 0
	if t.noTimeout {
		return
	}
	t.schedule(t.seq, delay)
}

// Pause records elapsed time against the remaining budget and invalidates
// any in-flight alarm.
func (t *pausableTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.remaining -= time.Since(t.startedAt)
	if t.remaining < 0 {
		t.remaining = 0
	}
	t.running = false
	t.seq++
}

// Resume re-arms the timer with the previously recorded remaining budget
// plus an extra-time credit, per spec.md's undo-dialogue compensation rule.
// A timer last armed with a delay of 0 still never fires.
func (t *pausableTimer) Resume(extraCredit time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining += extraCredit
	t.running = true
	t.startedAt = time.Now()
	t.seq++
	if t.noTimeout || t.remaining <= 0 {
		return
	}
	t.schedule(t.seq, t.remaining)
}

// Cancel stops the timer without it ever firing again.
func (t *pausableTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.seq++
}

// schedule must be called with mu held.
func (t *pausableTimer) schedule(seq uint64, delay time.Duration) {
	go func() {
		time.Sleep(delay)
		t.mu.Lock()
		stale := seq != t.seq || !t.running
		t.mu.Unlock()
		if stale {
			return
		}
		t.system.Root.Send(t.pid, t.newMsg())
	}()
}
