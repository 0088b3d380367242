package worker

import (
	"context"
	"fmt"
)

// Job is one unit of keyed work.
type Job struct {
	Key  int64
	ctx  context.Context
	run  func(context.Context) error
	done chan error
}

type Worker struct {
	id         int
	dispatcher *Dispatcher
	jobChannel chan *Job
}

func newWorker(id int, d *Dispatcher) *Worker {
	return &Worker{
		id:         id,
		dispatcher: d,
		jobChannel: make(chan *Job),
	}
}

func (w *Worker) start() {
	go func() {
		defer w.dispatcher.wg.Done()
		for {
			// register as idle
			select {
			case w.dispatcher.workerPool <- w.jobChannel:
			case <-w.dispatcher.quit:
				return
			}
			select {
			case job := <-w.jobChannel:
				w.execute(job)
			case <-w.dispatcher.quit:
				return
			}
		}
	}()
}

func (w *Worker) execute(job *Job) {
	err := job.ctx.Err()
	if err == nil {
		err = runJob(job)
	}
	if err != nil {
		w.dispatcher.log.WithError(err).WithField("key", job.Key).WithField("worker", w.id).Debug("job finished with error")
	}
	job.done <- err
	w.dispatcher.finish(job.Key)
}

func runJob(job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
	}()
	return job.run(job.ctx)
}
