package main

import (
	"context"
	"os"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/server"
	"github.com/go-home-io/wled-effects/settings"
	"github.com/go-home-io/wled-effects/systems/logger"
	"github.com/jessevdk/go-flags"
)

func main() {
	options := &settings.StartUpOptions{}
	_, err := flags.Parse(options)
	if err != nil {
		os.Exit(1)
	}

	s, err := settings.Load(options)
	if err != nil {
		logger.NewConsoleLogger().Fatal("Failed to load configuration", err,
			common.LogSystemToken, "main")
		return
	}

	srv, err := server.NewServer(s)
	if err != nil {
		s.SystemLogger().Fatal("Failed to start effects server", err)
		return
	}

	if options.Once {
		s.SystemLogger().Info("Rendering a single frame of every effect")
		if err := srv.RunOnce(context.Background()); err != nil {
			s.SystemLogger().Error("Single frame render failed", err)
			s.SystemLogger().Flush()
			os.Exit(1)
		}

		return
	}

	s.SystemLogger().Info("Starting WLED effects server")
	srv.Start()
}
