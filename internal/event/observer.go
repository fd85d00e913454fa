package event

// Wildcard matches every event name of a given emitter.
const Wildcard = "*"

type model struct {
	emitter *Emitter
	name    string
	sub     *Subscription
}

// Observer owns a set of subscriptions on other subjects and releases
// them together. It is the layer where the wildcard name lives: the
// Emitter itself only matches exact names.
type Observer struct {
	models []model
}

// On subscribes fn to events called name on subject. name may be
// Wildcard.
func (o *Observer) On(subject Subject, name string, fn Handler) {
	em := subject.Events()
	var sub *Subscription
	if name == Wildcard {
		sub = em.SubscribeAll(fn)
	} else {
		sub = em.Subscribe(name, fn)
	}
	o.models = append(o.models, model{emitter: em, name: name, sub: sub})
}

// Forget drops every handler registered for (subject, name).
func (o *Observer) Forget(subject Subject, name string) {
	em := subject.Events()
	o.filter(func(m model) bool { return m.emitter == em && m.name == name })
}

// ForgetSubject drops every handler registered on subject.
func (o *Observer) ForgetSubject(subject Subject) {
	em := subject.Events()
	o.filter(func(m model) bool { return m.emitter == em })
}

func (o *Observer) filter(drop func(model) bool) {
	kept := o.models[:0]
	for _, m := range o.models {
		if drop(m) {
			m.sub.Unsubscribe()
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(o.models); i++ {
		o.models[i] = model{}
	}
	o.models = kept
}

// Close unsubscribes everything the observer holds.
func (o *Observer) Close() {
	for _, m := range o.models {
		m.sub.Unsubscribe()
	}
	o.models = nil
}

// Len returns the number of subscriptions held.
func (o *Observer) Len() int { return len(o.models) }

// Transmit republishes every event of from on to, with prefix prepended
// to the event name.
func (o *Observer) Transmit(from, to Subject, prefix string) {
	target := to.Events()
	o.On(from, Wildcard, func(ev Event) error {
		return target.Publish(ev.WithName(prefix + ev.Name))
	})
}

// TransmitStripped republishes on to the events of from that address
// prefix, with the prefix removed.
func (o *Observer) TransmitStripped(from, to Subject, prefix string) {
	target := to.Events()
	o.On(from, Wildcard, func(ev Event) error {
		rest, ok := StripPrefix(ev.Name, prefix)
		if !ok {
			return nil
		}
		return target.Publish(ev.WithName(rest))
	})
}
