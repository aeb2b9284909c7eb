package event

import (
	"go.uber.org/zap"
	"sync"
	"time"
)

type Event struct {
	TxID      string      `json:"txId"`
	Type      Type        `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEvent(txId string, eventType Type, data interface{}) Event {
	return Event{
		TxID:      txId,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Listener receives the events of the types it subscribed to, in emission
// order. Its queue is unbounded so a slow callback never blocks the emitter.
type Listener struct {
	types    map[Type]bool
	callback func(evt Event)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
}

func newListener(types []Type, callback func(evt Event)) *Listener {
	l := &Listener{
		types:    make(map[Type]bool, len(types)),
		callback: callback,
		queue:    make([]Event, 0),
	}
	l.cond = sync.NewCond(&l.mu)
	for _, eventType := range types {
		l.types[eventType] = true
	}

	return l
}

func (l *Listener) push(evt Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.queue = append(l.queue, evt)
	l.cond.Signal()
}

func (l *Listener) next() (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.queue) == 0 && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return Event{}, false
	}

	evt := l.queue[0]
	l.queue[0] = Event{}
	l.queue = l.queue[1:]

	return evt, true
}

func (l *Listener) run() {
	for {
		evt, ok := l.next()
		if !ok {
			return
		}
		deliver(l.callback, evt)
	}
}

func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.cond.Broadcast()
}

// Manager keeps the append-only log of emitted events and fans them out to
// listeners. Listeners run on their own goroutine and can never block or fail
// the emitter.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
	log       []Event
	closed    bool
	wg        sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		listeners: make([]*Listener, 0),
		log:       make([]Event, 0),
	}
}

func (m *Manager) AddEventListener(eventType Type, callback func(evt Event)) {
	m.AddEventsListener(callback, eventType)
}

// AddEventsListener subscribes one callback to several event types. The
// callback sees them in the order they were emitted.
func (m *Manager) AddEventsListener(callback func(evt Event), eventTypes ...Type) {
	zap.L().With(zap.Any("types", eventTypes)).Debug("EventManager: AddListener")

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		zap.L().With(zap.Any("types", eventTypes)).Warn("EventManager: Listener added after close")
		return
	}

	listener := newListener(eventTypes, callback)
	m.listeners = append(m.listeners, listener)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		listener.run()
	}()
}

func (m *Manager) EmitEvent(evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log = append(m.log, evt)
	if m.closed {
		return
	}

	if len(m.listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}
	for _, listener := range m.listeners {
		if !listener.types[evt.Type] {
			continue
		}
		zap.L().With(zap.String("type", string(evt.Type)), zap.String("txId", evt.TxID)).Debug("EventManager: Emitting event")
		listener.push(evt)
	}
}

// Log returns every event emitted so far, in emission order.
func (m *Manager) Log() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]Event, len(m.log))
	copy(events, m.log)

	return events
}

func (m *Manager) LogByType(eventType Type) []Event {
	events := make([]Event, 0)
	for _, evt := range m.Log() {
		if evt.Type == eventType {
			events = append(events, evt)
		}
	}

	return events
}

// Close stops every listener, dropping what they have not received yet.
// Events emitted afterwards are still logged.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, listener := range m.listeners {
		listener.close()
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func deliver(callback func(evt Event), evt Event) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().With(zap.String("type", string(evt.Type)), zap.Any("panic", r)).Error("EventManager: Listener panicked")
		}
	}()

	callback(evt)
}
