package utils

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/martineghiazaryan/daily-reminder-bot/models"
)

var ErrSchedulerStopped = errors.New("scheduler: stopped")

type jobQueue []models.ReminderJob

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	return q[i].FireAt.Before(q[j].FireAt)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *jobQueue) Push(x any) {
	*q = append(*q, x.(models.ReminderJob))
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	job := old[n-1]
	*q = old[0 : n-1]
	return job
}

// Scheduler is the process-wide one-shot timer registry. A single background
// goroutine sleeps until the earliest queued job is due, then emits it on C().
// Each job fires at most once, at or after its fire time. Consumers must keep
// draining C(): when the channel is full a due job is dropped, never blocked on,
// so one slow delivery can only cost its own reminder.
type Scheduler struct {
	mu        sync.Mutex
	queue     jobQueue
	out       chan models.ReminderJob
	wakeup    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopped   bool
	cancelled map[uuid.UUID]struct{}
	dropped   uint64
}

func NewScheduler(bufferSize int) *Scheduler {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Scheduler{
		queue:     make(jobQueue, 0),
		out:       make(chan models.ReminderJob, bufferSize),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		cancelled: make(map[uuid.UUID]struct{}),
	}
}

// C is the channel due jobs are emitted on. It is closed by Stop.
func (s *Scheduler) C() <-chan models.ReminderJob {
	return s.out
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	heap.Init(&s.queue)
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Schedule registers a job to fire once at job.FireAt and returns a handle
// usable with Cancel. A fire time not strictly in the future is a no-op and
// returns uuid.Nil: a due time that already passed today never fires.
func (s *Scheduler) Schedule(job models.ReminderJob) (uuid.UUID, error) {
	if !job.FireAt.After(time.Now()) {
		return uuid.Nil, nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return uuid.Nil, ErrSchedulerStopped
	}

	heap.Push(&s.queue, job)
	s.signalWakeup()
	return job.ID, nil
}

// Cancel removes a not-yet-fired job by its handle. It reports whether the
// job was still queued. Nothing in the command flow calls this yet: marking a
// task done does not cancel its reminder.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.queue {
		if job.ID == id {
			s.cancelled[id] = struct{}{}
			return true
		}
	}
	return false
}

// Dropped reports how many due jobs were discarded because C() was full.
func (s *Scheduler) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	var timer *time.Timer
	for {
		next, hasNext := s.peek()
		if !hasNext {
			select {
			case <-s.wakeup:
				continue
			case <-s.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := s.popDue(time.Now())
			for _, job := range due {
				select {
				case s.out <- job:
				default:
					atomic.AddUint64(&s.dropped, 1)
				}
			}
		case <-s.wakeup:
			continue
		case <-s.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (s *Scheduler) signalWakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

func (s *Scheduler) peek() (models.ReminderJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.ReminderJob{}, false
	}
	return s.queue[0], true
}

func (s *Scheduler) popDue(now time.Time) []models.ReminderJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]models.ReminderJob, 0)
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.FireAt.After(now) {
			break
		}
		job := heap.Pop(&s.queue).(models.ReminderJob)
		if _, ok := s.cancelled[job.ID]; ok {
			delete(s.cancelled, job.ID)
			continue
		}
		due = append(due, job)
	}
	return due
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// NextFireTime combines a time-of-day with today's date. When that instant is
// already behind now, rollover decides whether the reminder moves to tomorrow
// or is simply not schedulable (the second return is false).
func NextFireTime(now time.Time, hour, minute int, rollover bool) (time.Time, bool) {
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if fireAt.After(now) {
		return fireAt, true
	}
	if rollover {
		return fireAt.AddDate(0, 0, 1), true
	}
	return time.Time{}, false
}
