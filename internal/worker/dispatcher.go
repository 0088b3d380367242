package worker

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrDispatcherBusy    = errors.New("dispatcher queue is full")
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)

// DispatcherConfig sizes the worker pool and the pending-job limit.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

type keyQueue struct {
	jobs    []*Job
	running bool // a job for this key is on a worker
	ready   bool // key sits in the ready list
}

// Dispatcher runs keyed jobs on a fixed pool of workers. Jobs sharing a key
// run one at a time in submission order; different keys run in parallel and
// take turns through the ready list.
type Dispatcher struct {
	jobQueue   chan *Job
	workerPool chan chan *Job
	workers    []*Worker
	wake       chan struct{}
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	log        *logrus.Logger

	mu        sync.Mutex
	limit     int
	pending   int
	queues    map[int64]*keyQueue
	ready     *list.List
	positions map[int64]*list.Element
}

func NewDispatcher(cfg DispatcherConfig, log *logrus.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	d := &Dispatcher{
		jobQueue:   make(chan *Job, cfg.QueueSize),
		workerPool: make(chan chan *Job, cfg.Workers),
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		log:        log,
		limit:      cfg.QueueSize,
		queues:     make(map[int64]*keyQueue),
		ready:      list.New(),
		positions:  make(map[int64]*list.Element),
	}
	for i := 0; i < cfg.Workers; i++ {
		w := newWorker(i+1, d)
		d.workers = append(d.workers, w)
		d.wg.Add(1)
		w.start()
	}
	go d.run()
	return d
}

// Submit queues fn under key and waits for it to finish. It fails fast with
// ErrDispatcherBusy when the pending limit is reached.
func (d *Dispatcher) Submit(ctx context.Context, key int64, fn func(context.Context) error) error {
	done, err := d.SubmitAsync(ctx, key, fn)
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrDispatcherStopped
	}
}

// SubmitAsync queues fn under key and returns a channel receiving its result.
func (d *Dispatcher) SubmitAsync(ctx context.Context, key int64, fn func(context.Context) error) (<-chan error, error) {
	select {
	case <-d.quit:
		return nil, ErrDispatcherStopped
	default:
	}
	d.mu.Lock()
	if d.pending >= d.limit {
		d.mu.Unlock()
		return nil, ErrDispatcherBusy
	}
	d.pending++
	d.mu.Unlock()

	job := &Job{Key: key, ctx: ctx, run: fn, done: make(chan error, 1)}
	// pending never exceeds the channel capacity, so this does not block
	d.jobQueue <- job
	return job.done, nil
}

// Stop shuts the workers down after their current job.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	for {
		// dispatch one job of the key in front of the ready list
		if job, ok := d.nextReady(); ok {
			select {
			case workerChan := <-d.workerPool:
				d.log.WithField("key", job.Key).Debug("dispatch job")
				select {
				case workerChan <- job:
				case <-d.quit:
					return
				}
			case <-d.quit:
				return
			}
			// pick up a new job without blocking
			select {
			case job := <-d.jobQueue:
				d.enqueueJob(job)
			default:
			}
			continue
		}
		select {
		case job := <-d.jobQueue:
			d.enqueueJob(job)
		case <-d.wake:
		case <-d.quit:
			return
		}
	}
}

func (d *Dispatcher) enqueueJob(job *Job) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.queues[job.Key]
	if q == nil {
		q = &keyQueue{}
		d.queues[job.Key] = q
	}
	q.jobs = append(q.jobs, job)
	if q.running || q.ready {
		return
	}
	q.ready = true
	d.positions[job.Key] = d.ready.PushBack(job.Key)
}

// nextReady takes the first job of the key in front of the ready list and
// marks the key running.
func (d *Dispatcher) nextReady() (*Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elem := d.ready.Front()
	if elem == nil {
		return nil, false
	}
	key := elem.Value.(int64)
	d.ready.Remove(elem)
	delete(d.positions, key)

	q := d.queues[key]
	q.ready = false
	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	q.running = true
	d.pending--
	return job, true
}

// finish releases the key and puts it at the back of the ready list if more work is queued.
func (d *Dispatcher) finish(key int64) {
	d.mu.Lock()
	q := d.queues[key]
	if q != nil {
		q.running = false
		if len(q.jobs) > 0 {
			q.ready = true
			d.positions[key] = d.ready.PushBack(key)
		} else {
			delete(d.queues, key)
		}
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}
