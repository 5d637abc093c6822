package scheduler

import (
	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DowntimeScheduler publishes a daily report of equipment that is marked
// down, grouped by store, with the store's maintenance contacts attached.
type DowntimeScheduler struct {
	cron             *cron.Cron
	equipmentService service.EquipmentService
	storeService     service.StoreService
	spec             string
}

func NewDowntimeScheduler(
	equipmentService service.EquipmentService,
	storeService service.StoreService,
	spec string,
) *DowntimeScheduler {
	return &DowntimeScheduler{
		cron:             cron.New(),
		equipmentService: equipmentService,
		storeService:     storeService,
		spec:             spec,
	}
}

// Start registers the report job and starts the cron loop.
func (s *DowntimeScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.RunReport)
	if err != nil {
		logger.Error("Failed to add cron job for downtime report", err)
		return err
	}

	s.cron.Start()
	logger.Info("Downtime report scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunReport builds and logs the current downtime report. Exported so it can
// be triggered outside the cron loop.
func (s *DowntimeScheduler) RunReport() {
	isDown := true
	down, err := s.equipmentService.ListEquipment(service.EquipmentListOptions{IsDown: &isDown})
	if err != nil {
		logger.Error("Failed to load down equipment for report", err)
		return
	}

	if len(down) == 0 {
		logger.Info("Downtime report: all equipment operational", nil)
		return
	}

	byStore := make(map[string][]model.Equipment)
	for _, item := range down {
		byStore[item.StoreID] = append(byStore[item.StoreID], item)
	}

	for storeID, items := range byStore {
		store, err := s.storeService.GetStoreByID(storeID)
		if err != nil {
			logger.Error("Failed to resolve store for downtime report", err, map[string]interface{}{
				"store_id": storeID,
			})
			continue
		}

		labels := make([]string, 0, len(items))
		for _, item := range items {
			labels = append(labels, item.FullName())
		}

		logger.Warn("Downtime report", map[string]interface{}{
			"store":          store.DisplayName(),
			"timezone":       store.Timezone,
			"contact_emails": []string(store.Emails),
			"down_count":     len(items),
			"equipment":      labels,
		})
	}
}

// Stop halts the cron loop.
func (s *DowntimeScheduler) Stop() {
	logger.Info("Stopping downtime report scheduler...", nil)
	s.cron.Stop()
}
