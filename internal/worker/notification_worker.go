package worker

import (
	"github.com/spec-kit/staffing-service/internal/service"
)

// StartNotificationWorker subscribes the audit and notice handlers. Dispatch is synchronous,
// so no goroutine is started.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
