package jobs

import (
	"github.com/mdworks/markpad/internal/render"
	"github.com/mdworks/markpad/internal/service"
)

// CacheOptimizeTask periodically trims caches past 80% fill and prunes
// orphaned access-time records, keeping memory bounded between bursts of
// activity.
type CacheOptimizeTask struct {
	manager  *service.DocumentManager
	renderer *render.Renderer
	schedule string
}

func NewCacheOptimizeTask(schedule string, manager *service.DocumentManager, renderer *render.Renderer) *CacheOptimizeTask {
	return &CacheOptimizeTask{
		manager:  manager,
		renderer: renderer,
		schedule: schedule,
	}
}

func (t *CacheOptimizeTask) Name() string {
	return "cache_optimize"
}

func (t *CacheOptimizeTask) Schedule() string {
	return t.schedule
}

func (t *CacheOptimizeTask) Run() {
	t.manager.Optimize()
	t.renderer.Optimize()
}
