package mcp

import "sync"

// NotificationHandler processes one notification's params. It runs on a
// dedicated per-method goroutine, so a slow handler for one method never
// blocks delivery to another.
type NotificationHandler func(params []byte)

const defaultNotificationQueueDepth = 100

// Dispatcher is the notification dispatcher: one bounded queue per
// subscribed method, drop-oldest under backpressure, strictly ordered
// delivery per subscriber.
type Dispatcher struct {
	diagnostic DiagnosticSink

	mu          sync.RWMutex
	subscribers map[string]chan *Notification

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newDispatcher(diagnostic DiagnosticSink) *Dispatcher {
	return &Dispatcher{
		diagnostic:  diagnostic,
		subscribers: make(map[string]chan *Notification),
		closing:     make(chan struct{}),
	}
}

// Subscribe returns a bounded channel of notifications for method. Only
// one subscriber per method is supported; subscribing again replaces the
// previous channel (the previous one is closed).
func (d *Dispatcher) Subscribe(method string, depth int) <-chan *Notification {
	if depth <= 0 {
		depth = defaultNotificationQueueDepth
	}
	ch := make(chan *Notification, depth)

	d.mu.Lock()
	if old, ok := d.subscribers[method]; ok {
		close(old)
	}
	d.subscribers[method] = ch
	d.mu.Unlock()

	return ch
}

// OnNotification registers a callback-style handler for method, run on its
// own goroutine pulling from a Subscribe channel under the hood.
func (d *Dispatcher) OnNotification(method string, handler NotificationHandler) {
	ch := d.Subscribe(method, defaultNotificationQueueDepth)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				handler(n.Params)
			case <-d.closing:
				return
			}
		}
	}()
}

// dispatch routes an inbound notification to its method's queue, dropping
// the oldest queued item if the queue is full.
func (d *Dispatcher) dispatch(n *Notification) {
	d.mu.RLock()
	ch, ok := d.subscribers[n.Method]
	d.mu.RUnlock()

	if !ok {
		d.diagnostic(DiagnosticEvent{Level: "debug", Message: "no subscriber for notification method " + n.Method})
		return
	}

	select {
	case ch <- n:
		return
	default:
	}

	select {
	case <-ch:
		d.diagnostic(DiagnosticEvent{Level: "warn", Message: "notification queue full for " + n.Method + ", dropped oldest"})
	default:
	}

	select {
	case ch <- n:
	default:
		d.diagnostic(DiagnosticEvent{Level: "warn", Message: "notification dropped for " + n.Method + " after overflow recovery"})
	}
}

func (d *Dispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.closing)
	})
	d.wg.Wait()
}
