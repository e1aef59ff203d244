package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/islandtune/internal/server"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// router builds the HTTP API over the merged catalog.
func (r *Runner) router(cfg shared.PlaybackConfig) *server.MuxRouter {
	logger := shared.WithLogger(r.logger, "component", "server")

	router := server.NewMuxRouter()
	router.Use(server.Logging(logger), server.CORS(r.config.Server.AllowedOrigins...))
	router.Handler(server.NewTuneHandler(r.catalog, r.renderOpts(cfg), logger))
	return router
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}

	// open the library before handlers start calling catalog concurrently
	if _, err := r.library(); err != nil {
		r.logger.Warn("tune library unavailable, serving built-in tunes", "error", err)
	}

	addr := r.config.Server.Addr
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, addr, r.router(cfg), r.logger)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the tune catalog and compiler over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address (default from config, 127.0.0.1:8080)",
			},
		},
		Action: r.Serve,
	}
}
