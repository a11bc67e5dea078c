package render

import (
	"time"
)

// DebounceInterval is how long the queue waits after the last edit before
// releasing content for rendering.
const DebounceInterval = 100 * time.Millisecond

// Queue coalesces rapid edit submissions into single render passes. Only the
// most recently submitted content survives a debounce window; superseded
// submissions are discarded, never rendered. Output is delivered on a
// single-consumer channel, latest-wins there too, so a slow consumer only
// ever sees the freshest content.
type Queue struct {
	submit   chan string
	out      chan string
	done     chan struct{}
	interval time.Duration
}

func NewQueue() *Queue {
	return NewQueueWithInterval(DebounceInterval)
}

func NewQueueWithInterval(interval time.Duration) *Queue {
	q := &Queue{
		submit:   make(chan string, 16),
		out:      make(chan string, 1),
		done:     make(chan struct{}),
		interval: interval,
	}
	go q.loop()
	return q
}

// Submit queues markdown for rendering, restarting the debounce timer.
func (q *Queue) Submit(markdown string) {
	select {
	case q.submit <- markdown:
	case <-q.done:
	}
}

// Out delivers the surviving content of each debounce window.
func (q *Queue) Out() <-chan string {
	return q.out
}

// Stop tears the queue down. Pending content is dropped.
func (q *Queue) Stop() {
	close(q.done)
}

func (q *Queue) loop() {
	var timer *time.Timer
	var fire <-chan time.Time
	var pending string
	var has bool

	for {
		select {
		case <-q.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case s := <-q.submit:
			// Overwrite the slot; the timer restarts rather than layering.
			pending, has = s, true
			if timer == nil {
				timer = time.NewTimer(q.interval)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(q.interval)
			}

		case <-fire:
			timer = nil
			fire = nil
			if !has {
				continue
			}
			has = false
			q.deliver(pending)
		}
	}
}

func (q *Queue) deliver(content string) {
	select {
	case q.out <- content:
	default:
		// Consumer has not picked up the previous result; replace it.
		select {
		case <-q.out:
		default:
		}
		q.out <- content
	}
}
