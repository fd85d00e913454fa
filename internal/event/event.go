// Package event implements the per-subject publish/subscribe registry the
// reactive containers and components communicate through.
//
// There is no global table: every subject owns an Emitter, and subscribing
// returns a Subscription token that the subscriber keeps and cancels.
// Dispatch is synchronous and single-threaded.
package event

import "strings"

// Event is one notification. Name identifies what changed (".key",
// ".0.name", ":append", ...); the remaining fields carry the payload of
// the mutation that produced it.
type Event struct {
	Name  string
	Key   string
	Index int
	Value any
}

// WithName returns a copy of the event renamed to name.
func (e Event) WithName(name string) Event {
	e.Name = name
	return e
}

// Handler receives an event. A non-nil error stops the dispatch and is
// returned from Publish.
type Handler func(Event) error

// Subject is anything that owns an Emitter. Identity is the Emitter
// pointer, never the Go type.
type Subject interface {
	Events() *Emitter
}

// Subscription is the token returned by Subscribe.
type Subscription struct {
	emitter *Emitter
	name    string
	any     bool
	fn      Handler
	active  bool
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool { return s != nil && s.active }

// Unsubscribe detaches the handler. It is safe to call more than once and
// from inside a handler; a cancelled handler is skipped even if the
// current dispatch already took its snapshot.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.emitter.remove(s)
}

// Emitter is the registry of one subject. The zero value is ready to use.
type Emitter struct {
	subs []*Subscription
}

// Events lets an Emitter be used directly as a Subject.
func (e *Emitter) Events() *Emitter { return e }

// Subscribe registers fn for events named exactly name.
func (e *Emitter) Subscribe(name string, fn Handler) *Subscription {
	return e.add(&Subscription{emitter: e, name: name, fn: fn, active: true})
}

// SubscribeAll registers fn for every event published on e.
func (e *Emitter) SubscribeAll(fn Handler) *Subscription {
	return e.add(&Subscription{emitter: e, any: true, fn: fn, active: true})
}

func (e *Emitter) add(s *Subscription) *Subscription {
	e.subs = append(e.subs, s)
	return s
}

func (e *Emitter) remove(s *Subscription) {
	for i, sub := range e.subs {
		if sub == s {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscriptions.
func (e *Emitter) Len() int { return len(e.subs) }

// Publish invokes, in subscription order, every handler registered for
// ev.Name. The handler list is snapshotted first, so handlers may
// subscribe or unsubscribe on the same emitter while it runs.
func (e *Emitter) Publish(ev Event) error {
	if len(e.subs) == 0 {
		return nil
	}
	snapshot := make([]*Subscription, len(e.subs))
	copy(snapshot, e.subs)

	for _, s := range snapshot {
		if !s.active {
			continue
		}
		if !s.any && s.name != ev.Name {
			continue
		}
		if err := s.fn(ev); err != nil {
			return err
		}
	}
	return nil
}

// StripPrefix returns the remainder of name after prefix when prefix
// addresses name or one of its descendants (".3" matches ".3", ".3.x" and
// ".3:append" but not ".30").
func StripPrefix(name, prefix string) (string, bool) {
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	rest := name[len(prefix):]
	if rest == "" || rest[0] == '.' || rest[0] == ':' {
		return rest, true
	}
	return "", false
}
