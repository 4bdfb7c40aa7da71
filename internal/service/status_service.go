package service

import (
	"context"
	"time"

	"github.com/spec-kit/panel-dashboard/internal/config"
	"github.com/spec-kit/panel-dashboard/internal/panel"
)

// StatusService reports panel connectivity and which settings are present.
type StatusService struct {
	panel       PanelAPI
	panelConfig func() config.PanelConfig
	appEnv      string
	now         func() time.Time
}

func NewStatusService(api PanelAPI, panelConfig func() config.PanelConfig, appEnv string) *StatusService {
	if panelConfig == nil {
		panelConfig = config.LoadPanel
	}
	return &StatusService{panel: api, panelConfig: panelConfig, appEnv: appEnv, now: time.Now}
}

// StatusReport never contains secret values, only whether they are set.
type StatusReport struct {
	Timestamp        time.Time
	PanelConnected   bool
	PanelCode        panel.Code
	PanelError       string
	AppEnv           string
	PanelURL         string
	PanelUsername    string
	PanelPasswordSet bool
	PanelTokenSet    bool
}

func (s *StatusService) Status(ctx context.Context) StatusReport {
	cfg := s.panelConfig()
	check := s.panel.VerifyLogin(ctx)
	return StatusReport{
		Timestamp:        s.now().UTC(),
		PanelConnected:   check.Succeeded,
		PanelCode:        check.Code,
		PanelError:       check.Err(),
		AppEnv:           s.appEnv,
		PanelURL:         cfg.BaseURL,
		PanelUsername:    cfg.Username,
		PanelPasswordSet: cfg.Password != "",
		PanelTokenSet:    cfg.Token != "",
	}
}

// VerifyPanel checks the configured panel credentials.
func (s *StatusService) VerifyPanel(ctx context.Context) panel.Result {
	return s.panel.VerifyLogin(ctx)
}
