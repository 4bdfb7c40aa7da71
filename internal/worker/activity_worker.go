package worker

import (
	"github.com/spec-kit/panel-dashboard/internal/service"
)

// StartActivityRecorder registers the activity log handlers.
func StartActivityRecorder(recorder *service.ActivityRecorder) {
	if recorder == nil {
		return
	}
	recorder.RegisterHandlers()
}
