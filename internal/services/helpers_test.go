package services

import (
	"context"
	"sync"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/completion"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
)

type triggerCall struct {
	userID     string
	categories []string
}

// recordingTrigger records refresh requests instead of scheduling them.
type recordingTrigger struct {
	mu    sync.Mutex
	calls []triggerCall
}

func (r *recordingTrigger) TriggerRefresh(userID string, categories ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, triggerCall{userID: userID, categories: categories})
}

func (r *recordingTrigger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingTrigger) last() triggerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return triggerCall{}
	}
	return r.calls[len(r.calls)-1]
}

// usdConverter converts with fixed USD-per-unit rates. Unknown codes are
// worth one USD.
type usdConverter map[string]float64

func (c usdConverter) rate(code string) float64 {
	if r, ok := c[code]; ok {
		return r
	}
	return 1
}

func (c usdConverter) Convert(_ context.Context, amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	return amount * c.rate(from) / c.rate(to)
}

// stubCompleter returns canned text and records every request.
type stubCompleter struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []completion.Request
	hook     func()
}

func (s *stubCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.text, s.err
}

type publishedEvent struct {
	topic     string
	eventType string
	data      interface{}
}

// recordingNotifier captures published websocket events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(topic, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{topic: topic, eventType: eventType, data: data})
}

func (n *recordingNotifier) all() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedEvent(nil), n.events...)
}

// recordingPublisher captures published jobs.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, job jobs.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}
