package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/storykeeper/internal/httpapi"
	"github.com/HendryAvila/storykeeper/internal/server"
)

var (
	serveHTTPAddr string
	serveStdio    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio) and, if configured, the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("http") {
			cfg.HTTP.Addr = serveHTTPAddr
		}
		if !serveStdio && cfg.HTTP.Addr == "" {
			return errors.New("nothing to serve: enable stdio or set an HTTP address")
		}

		app, cleanup, err := server.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, app)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "REST listen address, e.g. :8080 (overrides http.addr)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", true, "serve MCP over stdin/stdout")
	rootCmd.AddCommand(serveCmd)
}

// run serves the enabled transports until ctx is cancelled or the stdio
// client disconnects.
func run(ctx context.Context, app *server.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if serveStdio {
		g.Go(func() error {
			defer cancel()
			stdio := mcpserver.NewStdioServer(app.MCP)
			stdio.SetErrorLogger(zap.NewStdLog(logger))
			logger.Info("mcp stdio server started", zap.String("version", server.Version))
			err := stdio.Listen(ctx, os.Stdin, os.Stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if cfg.HTTP.Addr != "" {
		router := httpapi.NewRouter(httpapi.Options{
			Engine:       app.Engine,
			Store:        app.Store,
			Logger:       logger,
			SeriesHeader: cfg.HTTP.SeriesHeader,
			Version:      server.Version,
			Tools:        app.Tools,
		})
		g.Go(func() error {
			return httpapi.ListenAndServe(ctx, cfg.HTTP.Addr, router, logger)
		})
	}

	return g.Wait()
}
