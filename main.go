package main

import (
	"embed"
	"os"

	"codefendpanel/internal/config"
	"codefendpanel/internal/devtools"
	"codefendpanel/internal/logging"
	"codefendpanel/internal/platform"
	"codefendpanel/internal/window"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		println("Error loading config, using defaults:", err.Error())
		cfg = config.Default()
	}

	if err := logging.Init(logging.Config{
		LogDir:     cfg.LogDir(),
		Prefix:     "panel",
		MaxAge:     cfg.LogMaxAge(),
		JSONOutput: cfg.Log.JSON,
		DevMode:    cfg.Log.Dev,
	}); err != nil {
		println("Error initializing logger:", err.Error())
	}

	class := platform.Detect()

	plugins, err := newPlugins(cfg, Version)
	if err != nil {
		logging.Error("Failed to build plugins", "error", err)
		showStartupError(err)
		logging.Close()
		os.Exit(1)
	}

	// Create an instance of the app structure
	app := NewApp(class, plugins)

	opts := &options.App{
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnDomReady: app.domReady,
		OnShutdown: app.shutdown,
		Bind:       append([]interface{}{app}, plugins.Bindings()...),
	}
	window.ApplyOptions(opts, window.MainRequest(window.VariantFor(class)))
	devtools.Apply(opts, devtoolsSettings(cfg))

	if err := wails.Run(opts); err != nil {
		logging.Error("Application exited with error", "error", err)
		println("Error:", err.Error())
		logging.Close()
		os.Exit(1)
	}
}
