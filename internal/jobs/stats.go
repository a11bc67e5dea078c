package jobs

import (
	"github.com/sirupsen/logrus"

	"github.com/mdworks/markpad/internal/render"
	"github.com/mdworks/markpad/internal/service"
)

// CacheStatsTask logs cache occupancy and render hit rates for observability.
type CacheStatsTask struct {
	manager  *service.DocumentManager
	renderer *render.Renderer
	schedule string
}

func NewCacheStatsTask(schedule string, manager *service.DocumentManager, renderer *render.Renderer) *CacheStatsTask {
	return &CacheStatsTask{
		manager:  manager,
		renderer: renderer,
		schedule: schedule,
	}
}

func (t *CacheStatsTask) Name() string {
	return "cache_stats"
}

func (t *CacheStatsTask) Schedule() string {
	return t.schedule
}

func (t *CacheStatsTask) Run() {
	cs := t.manager.CacheStats()
	rs := t.renderer.Stats()
	logrus.Infof("caches: documents %d/%d, metadata %d/%d, images %d/%d",
		cs.DocumentCacheSize, cs.DocumentCacheMax,
		cs.MetadataCacheSize, cs.MetadataCacheMax,
		cs.ImageCacheSize, cs.ImageCacheMax)
	logrus.Infof("render cache: %d/%d entries, %d hits, %d misses (%.1f%%), %d blocks",
		rs.Size, rs.MaxSize, rs.Hits, rs.Misses, rs.HitRatePercent, rs.BlockCacheSize)
}
