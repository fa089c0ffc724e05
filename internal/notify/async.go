package notify

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

const queueSize = 64

// ErrClosed is returned when a notice is queued after Close.
var ErrClosed = errors.New("notification dispatcher closed")

type AsyncOptions struct {
	Workers     int
	MaxAttempts int
	//delay before retry n is n*Backoff
	Backoff time.Duration
	Logger  log.FieldLogger
	//called once per notice that exhausted its attempts
	OnFailure func(kind string, err error)
}

type job struct {
	kind  string
	appID string
	ctx   context.Context
	//one send per channel, retried independently
	sends []func(ctx context.Context) error
}

// Async delivers notices in the background. Notices for one application always
// go to the same worker, so they are delivered in the order they were queued.
// When next is a Multi each channel is retried on its own, so a channel that
// already delivered never sends the notice twice.
type Async struct {
	next   Dispatcher
	opts   AsyncOptions
	queues []chan job
	sleep  func(time.Duration)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ Dispatcher = (*Async)(nil)

func NewAsync(next Dispatcher, opts AsyncOptions) *Async {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	a := &Async{
		next:   next,
		opts:   opts,
		queues: make([]chan job, opts.Workers),
		sleep:  time.Sleep,
	}
	for i := range a.queues {
		a.queues[i] = make(chan job, queueSize)
		a.wg.Add(1)
		go a.worker(a.queues[i])
	}
	return a
}

func (a *Async) NotifyApprover(ctx context.Context, app models.Application, approver models.Approver, actionToken string) error {
	j := job{kind: "approver_request", appID: app.ID}
	for _, d := range a.channels() {
		d := d
		j.sends = append(j.sends, func(ctx context.Context) error {
			return d.NotifyApprover(ctx, app, approver, actionToken)
		})
	}
	return a.enqueue(ctx, j)
}

func (a *Async) NotifyOutcome(ctx context.Context, app models.Application, outcome models.Outcome) error {
	j := job{kind: "outcome", appID: app.ID}
	for _, d := range a.channels() {
		d := d
		j.sends = append(j.sends, func(ctx context.Context) error {
			return d.NotifyOutcome(ctx, app, outcome)
		})
	}
	return a.enqueue(ctx, j)
}

func (a *Async) channels() []Dispatcher {
	if m, ok := a.next.(Multi); ok {
		return m
	}
	return []Dispatcher{a.next}
}

// Close stops accepting notices and waits for queued ones to be delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	for _, q := range a.queues {
		close(q)
	}
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Async) enqueue(ctx context.Context, j job) error {
	//delivery outlives the request that triggered it
	j.ctx = context.WithoutCancel(ctx)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queues[a.shard(j.appID)] <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) shard(appID string) int {
	h := fnv.New32a()
	h.Write([]byte(appID))
	return int(h.Sum32() % uint32(len(a.queues)))
}

func (a *Async) worker(queue <-chan job) {
	defer a.wg.Done()
	for j := range queue {
		a.deliver(j)
	}
}

func (a *Async) deliver(j job) {
	for i, send := range j.sends {
		a.deliverOne(j, i, send)
	}
}

func (a *Async) deliverOne(j job, channel int, send func(ctx context.Context) error) {
	var err error
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		if err = send(j.ctx); err == nil {
			return
		}
		a.opts.Logger.WithError(err).WithFields(log.Fields{
			"application_id": j.appID,
			"kind":           j.kind,
			"channel":        channel,
			"attempt":        attempt,
		}).Warn("⚠️ notification attempt failed")

		if attempt < a.opts.MaxAttempts {
			a.sleep(time.Duration(attempt) * a.opts.Backoff)
		}
	}

	failure := apperror.NotificationDelivery(err)
	a.opts.Logger.WithError(failure).WithFields(log.Fields{
		"application_id": j.appID,
		"kind":           j.kind,
		"channel":        channel,
	}).Error("❌ notification dropped")
	if a.opts.OnFailure != nil {
		a.opts.OnFailure(j.kind, failure)
	}
}
