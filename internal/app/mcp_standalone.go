package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leth4/leto-sub000/internal/config"
	"github.com/leth4/leto-sub000/internal/export"
	mcpserver "github.com/leth4/leto-sub000/internal/mcp"
)

// shutdownTimeout bounds the final flush of open boards.
const shutdownTimeout = 10 * time.Second

// ServeMCP runs the board engine as a standalone MCP server on stdin/stdout.
// Boards listed in open are opened up front. It returns once stdin closes
// or the process is interrupted.
func ServeMCP(cfg config.Config, open ...string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := New(cfg)
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := a.Shutdown(sctx); err != nil {
			log.Printf("[MCP] shutdown: %v", err)
		}
	}()

	if err := a.boards.WatchExternalChanges(); err != nil {
		log.Printf("[MCP] external changes are not watched: %v", err)
	}
	for _, p := range open {
		if _, err := a.boards.Open(ctx, p); err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
	}

	srv := mcpserver.New(mcpserver.Deps{
		Boards: a.boards,
		Export: export.Options{
			Padding:  cfg.Export.Padding,
			Scale:    cfg.Export.Scale,
			FontSize: cfg.Board.FontSize,
			Images:   export.FileImages(a.files.LocalPath),
		},
		ViewportWidth:  cfg.UI.ViewportWidth,
		ViewportHeight: cfg.UI.ViewportHeight,
	})
	if len(open) > 0 {
		srv.SetActiveBoard(open[0])
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ServeStdio() }()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("[MCP] Interrupted, shutting down...")
		return nil
	}
}
