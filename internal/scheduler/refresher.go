package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher drives a single periodic job for one controller. It is armed
// when the controller first holds data and disarmed when the data is cleared
// or the controller is torn down. The first run happens one full interval
// after arming, never immediately.
type Refresher struct {
	mu       sync.Mutex
	interval time.Duration
	sched    *gocron.Scheduler
}

// New creates a Refresher with the given tick interval.
func New(interval time.Duration) *Refresher {
	return &Refresher{interval: interval}
}

// Arm schedules job to run every interval. A no-op if already armed.
func (r *Refresher) Arm(job func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sched != nil {
		return
	}

	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(r.interval).WaitForSchedule().Do(job); err != nil {
		log.Printf("refresher: failed to schedule job: %v", err)
		return
	}
	s.StartAsync()
	r.sched = s
}

// Disarm stops the periodic job. A no-op if not armed. Stop waits for the
// running job to return, so it happens off this goroutine: Disarm may be
// invoked from inside the job itself.
func (r *Refresher) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sched == nil {
		return
	}
	s := r.sched
	r.sched = nil
	go s.Stop()
}

// Armed reports whether a job is currently scheduled.
func (r *Refresher) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sched != nil
}
