package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/san-kum/billiard/internal/sim"
	"github.com/san-kum/billiard/internal/stream"
	"github.com/spf13/cobra"
)

var addr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a live table to browsers over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveTable,
	}
	addTableFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&frameRate, "fps", 60, "frames per second")
	cmd.Flags().BoolVar(&stopAtRest, "stop-at-rest", false, "stop stepping once every disc is still")
	return cmd
}

func serveTable(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := cfg.NewTable()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("fps") {
		frameRate = cfg.Run.FPS
	}

	ctx, cancel := signalContext()
	defer cancel()

	hub := stream.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           stream.Handler(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] serving %s on %s", cfg.Name, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	pumpErr := make(chan error, 1)
	go func() {
		pumpErr <- stream.Pump(ctx, sim.New(table), hub, frameRate, cfg.Run.MaxFrameDt, cfg.Run.HostDecay, cfg.Run.StopAtRest)
	}()

	select {
	case err := <-serveErr:
		cancel()
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case err := <-pumpErr:
		if err == nil {
			log.Printf("[SERVER] table at rest, press ctrl+c to exit")
			<-ctx.Done()
		} else if !errors.Is(err, context.Canceled) {
			log.Printf("[SERVER] pump stopped: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	log.Printf("[SERVER] shutting down")
	return srv.Shutdown(shutdownCtx)
}
