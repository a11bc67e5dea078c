package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Task is a unit of background maintenance work.
type Task interface {
	Name() string
	Run()
}

// CronTask is a Task with its own cron schedule.
type CronTask interface {
	Schedule() string
	Task
}

// Runner executes maintenance tasks on their cron schedules. A task that is
// still running when its next tick fires is skipped, never stacked.
type Runner struct {
	cron    *cron.Cron
	tasks   []CronTask
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewRunner(tasks ...CronTask) *Runner {
	return &Runner{
		cron:    cron.New(),
		tasks:   tasks,
		running: mapset.NewSet[string](),
	}
}

func (r *Runner) Start() {
	for _, task := range r.tasks {
		task := task
		err := r.cron.AddFunc(task.Schedule(), func() {
			r.mu.Lock()
			if r.running.Contains(task.Name()) {
				r.mu.Unlock()
				logrus.Warnf("task %s is still running, skipping tick", task.Name())
				return
			}
			r.running.Add(task.Name())
			r.mu.Unlock()

			defer func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				r.running.Remove(task.Name())
			}()

			task.Run()
		})

		if err != nil {
			logrus.Errorf("failed to schedule task %s: %v", task.Name(), err)
		}
	}

	r.cron.Start()
}

func (r *Runner) Stop() {
	logrus.Info("stopping maintenance tasks")
	r.cron.Stop()
}
