package main

import (
	"path/filepath"

	"codefendpanel/internal/config"
	"codefendpanel/internal/devtools"
	"codefendpanel/internal/dialog"
	"codefendpanel/internal/fsscope"
	"codefendpanel/internal/httpclient"
	"codefendpanel/internal/notification"
	"codefendpanel/internal/opener"
	"codefendpanel/internal/platform"
	"codefendpanel/internal/plugin"
	"codefendpanel/internal/process"
	"codefendpanel/internal/shell"
	"codefendpanel/internal/store"
	"codefendpanel/internal/transfer"
	"codefendpanel/internal/updater"
	"codefendpanel/internal/windowstate"
)

// newPlugins builds the host plugin list. Order is startup order.
func newPlugins(cfg *config.Config, version string) (*plugin.Registry, error) {
	info := platform.Current()

	stores, err := store.NewManager(filepath.Join(cfg.Dir, "stores"))
	if err != nil {
		return nil, err
	}

	open := opener.New()
	client := httpclient.New(cfg.HTTPTimeout(), cfg.HTTP.MaxBodyBytes)
	scope := fsscope.New(cfg.ExpandScopes())
	upd := updater.New(updater.Options{
		Endpoints:      cfg.Updater.Endpoints,
		Pubkey:         cfg.Updater.Pubkey,
		Timeout:        cfg.UpdaterTimeout(),
		CurrentVersion: version,
		Target:         info.Target,
		Arch:           info.Arch,
		DownloadDir:    filepath.Join(cfg.Dir, "updates"),
	}, open.OpenPath)

	return plugin.NewRegistry(
		opener.Plugin(open),
		updater.Plugin(upd),
		shell.Plugin(shell.New(cfg.Shell.Allow)),
		platform.Plugin(platform.NewService()),
		dialog.Plugin(dialog.New()),
		transfer.Plugin(transfer.New(scope)),
		notification.Plugin(notification.New(cfg.Notification.Enabled)),
		fsscope.Plugin(scope),
		httpclient.Plugin(client),
		httpclient.CORSPlugin(client),
		devtools.Plugin(devtools.New(devtoolsSettings(cfg))),
		windowstate.Plugin(windowstate.NewManager(cfg.Dir)),
		store.Plugin(stores),
		process.Plugin(process.New()),
	)
}

func devtoolsSettings(cfg *config.Config) devtools.Settings {
	return devtools.Settings{
		Dev:           cfg.Log.Dev,
		OpenInspector: cfg.Devtools.OpenInspector,
	}
}
