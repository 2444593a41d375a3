package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"englishcenter_go/database"
	"englishcenter_go/models"
)

// NotificationScheduler promotes pending notifications to sent once their
// send time arrives.
type NotificationScheduler struct {
	db   *gorm.DB
	cron *cron.Cron
}

// NewNotificationScheduler creates a scheduler bound to the shared DB.
func NewNotificationScheduler() *NotificationScheduler {
	return &NotificationScheduler{
		db:   database.DB,
		cron: cron.New(),
	}
}

// Start registers the dispatch job and launches the cron loop in the
// background.
func (ns *NotificationScheduler) Start() error {
	_, err := ns.cron.AddFunc("@every 1m", ns.DispatchDue)
	if err != nil {
		return err
	}
	ns.cron.Start()
	logrus.Info("Notification scheduler started")
	return nil
}

// Stop halts the cron loop; running jobs finish first.
func (ns *NotificationScheduler) Stop() {
	ctx := ns.cron.Stop()
	<-ctx.Done()
}

// DispatchDue marks every pending notification whose send time has passed
// (or was never scheduled) as sent, stamping ngay_gui.
func (ns *NotificationScheduler) DispatchDue() {
	now := time.Now()

	result := ns.db.Model(&models.Notification{}).
		Where("trang_thai = ? AND (ngay_gui IS NULL OR ngay_gui <= ?)", "moi", now).
		Updates(map[string]interface{}{
			"trang_thai": "da_gui",
			"ngay_gui":   now,
		})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to dispatch due notifications")
		return
	}
	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Notifications dispatched")
	}
}
