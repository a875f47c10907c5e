package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/matheus3301/smsdash/internal/airtable"
	"github.com/matheus3301/smsdash/internal/api"
	"github.com/matheus3301/smsdash/internal/bus"
	"github.com/matheus3301/smsdash/internal/config"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/lock"
	"github.com/matheus3301/smsdash/internal/logging"
	"github.com/matheus3301/smsdash/internal/profile"
	"github.com/matheus3301/smsdash/internal/status"
	"github.com/matheus3301/smsdash/internal/twilio"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile passed to the fx module.
type Params struct {
	ProfileName string
	Profile     config.Profile
	// Probe runs one conversation load at startup so the status endpoint
	// reflects upstream health before the first client request.
	Probe bool
}

// Module returns the fx module for the gateway, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideTwilio,
			provideAirtable,
			provideConversationService,
			provideRouter,
			provideServer,
			provideLock,
			NewEventLogger,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideTwilio(p Params, logger *zap.Logger) (*twilio.Client, error) {
	return twilio.NewClient(p.Profile.Twilio, twilio.WithLogger(logger.Named("twilio")))
}

func provideAirtable(p Params, logger *zap.Logger) (*airtable.Client, error) {
	return airtable.NewClient(p.Profile.Airtable, airtable.WithLogger(logger.Named("airtable")))
}

func provideConversationService(tw *twilio.Client, at *airtable.Client, m *status.Machine, b *bus.Bus, logger *zap.Logger) *conversation.Service {
	return conversation.NewService(conversation.Deps{
		Messages:   tw,
		Directory:  at,
		Sender:     tw,
		Contacts:   at,
		SelfNumber: tw.SelfNumber(),
		Health:     m,
		Bus:        b,
		Logger:     logger,
	})
}

func provideRouter(p Params, svc *conversation.Service, tw *twilio.Client, m *status.Machine, logger *zap.Logger) http.Handler {
	d := api.Deps{
		Conversations: svc,
		Status:        m,
		CORSOrigin:    p.Profile.Server.CORSOrigin,
		StaticDir:     p.Profile.Server.StaticDir,
		Logger:        logger.Named("http"),
	}
	if p.Profile.Twilio.VoiceEnabled() {
		d.Voice = tw
	}
	if p.Profile.Server.APIToken != "" {
		d.Auth = api.StaticToken(p.Profile.Server.APIToken)
	}
	return api.NewRouter(d)
}

func provideServer(p Params, h http.Handler, logger *zap.Logger) (*Server, error) {
	return NewServer(p.Profile.Server.Addr, h, logger)
}

// provideLock runs after the listener is bound so the lock file records the
// real address.
func provideLock(p Params, srv *Server, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName), srv.Addr())
	if err != nil {
		_ = srv.Close()
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func registerLifecycle(lc fx.Lifecycle, p Params, srv *Server, lk *lock.Lock, svc *conversation.Service, events *EventLogger, machine *status.Machine, logger *zap.Logger) {
	probeCtx, cancelProbe := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			events.Start(context.Background())

			// Start HTTP server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()

			if p.Probe {
				go func() {
					ctx, cancel := context.WithTimeout(probeCtx, time.Minute)
					defer cancel()
					if _, err := svc.Load(ctx); err != nil {
						logger.Warn("startup probe failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelProbe()
			srv.Stop(ctx)
			_ = machine.Transition(status.Stopped)
			events.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("gateway stopped")
			return nil
		},
	})
}
