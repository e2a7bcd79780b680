package app

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/app/screens"
	"github.com/kerbaras/yomu/pkg/catalog"
	"github.com/kerbaras/yomu/pkg/config"
	"github.com/kerbaras/yomu/pkg/data"
	"github.com/kerbaras/yomu/pkg/export"
	"github.com/kerbaras/yomu/pkg/progress"
	"github.com/kerbaras/yomu/pkg/reader"
)

// App owns the shared singletons and runs the TUI on top of them.
type App struct {
	deps  screens.Deps
	store *data.Store
}

func NewApp(cfg config.Config) (*App, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "yomu"})
	logger.SetLevel(log.WarnLevel)

	store, err := data.OpenStore(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	token := func() string {
		if cfg.Token != "" {
			return cfg.Token
		}
		stored, _ := store.GetSetting("token", "")
		return stored
	}

	client := api.NewClient(cfg.APIURL, token, logger)
	cache := catalog.NewCache(client, logger)
	session := reader.NewSession(client, cache, func() float64 { return cfg.RegionMargin }, logger)
	tracker := progress.NewStore(client, logger)
	optimizer := export.NewOptimizer(export.EReaderOptimization())
	exporter := export.NewExporter(client, cfg.DownloadDir, optimizer, logger)

	return &App{
		deps: screens.Deps{
			Config:   cfg,
			Service:  client,
			Store:    store,
			Catalog:  cache,
			Session:  session,
			Progress: tracker,
			Exporter: exporter,
			Log:      logger,
		},
		store: store,
	}, nil
}

// Deps exposes the wired singletons for CLI commands that bypass the TUI.
func (a *App) Deps() screens.Deps {
	return a.deps
}

func (a *App) Run() error {
	defer a.Close()

	model := screens.NewRootScreen(a.deps)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (a *App) Close() {
	a.deps.Exporter.Close()
	if err := a.store.Close(); err != nil {
		a.deps.Log.Warn("closing store", "error", err)
	}
}
