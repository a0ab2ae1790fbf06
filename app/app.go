package app

import (
	"context"
	"fmt"

	"github.com/K0rzet/obuffka-assistant/core/bootstrap"
	coretelegram "github.com/K0rzet/obuffka-assistant/core/telegram"
	"github.com/K0rzet/obuffka-assistant/core/telegram/router"
	"github.com/K0rzet/obuffka-assistant/core/telegram/state"
	"github.com/K0rzet/obuffka-assistant/support"
)

// Storage bundles the in-memory state shared by the support handlers.
// Nothing survives a process restart.
type Storage struct {
	Sessions state.Manager
	Chats    *support.Registry
}

// App holds the wired application: configuration, state, and handlers.
type App struct {
	cfg      *Config
	storage  *Storage
	handlers *support.Handlers
}

// Bootstrap initializes logging and wires the support services.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	storage := &Storage{
		Sessions: state.NewMemoryManager(),
		Chats:    support.NewRegistry(),
	}

	provider := bootstrap.TypedServiceProviderFunc[*support.Handlers](
		func(_ context.Context, _ interface{}, st bootstrap.Storage) (*support.Handlers, error) {
			s, ok := st.(*Storage)
			if !ok {
				return nil, fmt.Errorf("app: unexpected storage type %T", st)
			}
			return support.NewHandlers(cfg.Telegram.AdminID, s.Sessions, s.Chats), nil
		},
	)

	res, err := bootstrap.Run(context.Background(), bootstrap.Options{
		Config:  cfg.CoreConfig(),
		Storage: storage,
		Modules: bootstrap.Modules{Services: provider},
	})
	if err != nil {
		return nil, err
	}

	handlers, ok := res.Services.(*support.Handlers)
	if !ok {
		return nil, fmt.Errorf("app: unexpected services type %T", res.Services)
	}

	return &App{
		cfg:      cfg,
		storage:  storage,
		handlers: handlers,
	}, nil
}

// TelegramRunOptions assembles routes and middleware for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	mws := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil)
	mws = append(mws, coretelegram.Middleware{
		Name: "session",
		Use:  state.WithSession(a.storage.Sessions),
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.storage.Sessions, reg, router.TextOptions{
		UnknownText:     a.handlers.UnknownText(),
		UnknownDocument: a.handlers.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: a.handlers.UnknownCallback(),
	}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}
