package feature

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// WorkerPool runs async handler phases off the request path. It has a fixed
// worker count and a bounded queue so a slow side-effect cannot exhaust
// request-handling capacity; when the queue is saturated the task is
// rejected and logged, never silently dropped.
type WorkerPool struct {
	tasks chan poolTask
	log   *logrus.Entry

	wg       sync.WaitGroup
	stopOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

type poolTask struct {
	name string
	run  func()
}

func NewWorkerPool(workers, queueSize int, log *logrus.Entry) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &WorkerPool{
		tasks: make(chan poolTask, queueSize),
		log:   log,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.runOne(task)
	}
}

func (p *WorkerPool) runOne(task poolTask) {
	defer func() {
		if r := recover(); r != nil && p.log != nil {
			p.log.WithField("task", task.name).Errorf("feature: async task panicked: %v", r)
		}
	}()
	task.run()
}

// Submit enqueues a task, returning false when the queue is full or the
// pool has been shut down.
func (p *WorkerPool) Submit(name string, run func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		if p.log != nil {
			p.log.WithField("task", name).Warn("feature: pool shut down, task rejected")
		}
		return false
	}
	select {
	case p.tasks <- poolTask{name: name, run: run}:
		return true
	default:
		if p.log != nil {
			p.log.WithField("task", name).Warn("feature: async queue saturated, task rejected")
		}
		return false
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
// The read lock held by Submit during its send keeps the close from racing
// a late enqueue.
func (p *WorkerPool) Shutdown() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.tasks)
	})
	p.wg.Wait()
}
