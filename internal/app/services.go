package app

import (
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/services"
)

// Services groups the Postgres-backed services built from one App.
type Services struct {
	Auth     services.AuthService
	Sessions services.SessionService
	Users    services.UserService
	Tasks    services.TaskService
	Reports  services.ReportService
	Notices  services.NoticeService
}

// Services requires a connected Postgres pool.
func (a *App) Services() (*Services, error) {
	if a.pgPool == nil {
		return nil, errPostgresNotConnected
	}

	component := func(name string) zerolog.Logger {
		return a.Logger.With().Str("component", name).Logger()
	}

	jwtCfg := a.Config.JWT
	tasks := services.NewTaskService(component("tasks"), a.pgPool, a.Location)
	return &Services{
		Auth: services.NewAuthService(
			component("auth"),
			a.pgPool,
			jwtCfg.Issuer,
			[]byte(jwtCfg.SigningKey),
			jwtCfg.AccessTokenTTL,
			jwtCfg.RefreshTokenTTL,
		),
		Sessions: services.NewSessionService(component("sessions"), a.pgPool),
		Users:    services.NewUserService(component("users"), a.pgPool),
		Tasks:    tasks,
		Reports:  services.NewReportService(component("reports"), tasks, a.Location),
		Notices:  services.NewNoticeService(component("notices"), a.pgPool),
	}, nil
}
