package main

import (
	"embed"
	"os"

	"github.com/charmbracelet/log"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/cubed/pkg/decomp"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app, err := NewApp(decomp.DefaultConfig())
	if err != nil {
		log.Fatal("create app", "err", err)
	}

	err = wails.Run(&options.App{
		Title:     "cubed",
		Width:     1024,
		Height:    768,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind:      []interface{}{app},
	})
	if err != nil {
		log.Error("wails", "err", err)
		os.Exit(1)
	}
}
