package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"activities-cli/internal/devserver"

	"github.com/spf13/cobra"
)

func newDevServerCmd(app *App) *cobra.Command {
	var addr, db string
	var seed bool

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run a local activity service backed by sqlite",
		Example: strings.TrimSpace(`
  activities dev-server
  activities dev-server --db ./activities.db
  ACTIVITIES_URL=http://127.0.0.1:8000 activities
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store, err := devserver.Open(ctx, db)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("open store: %w", err))
			}
			defer store.Close()

			if seed {
				if err := store.Seed(ctx, devserver.SeedActivities()); err != nil {
					return writeErr(cmd, fmt.Errorf("seed: %w", err))
				}
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           devserver.NewServer(store, app.log()).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			app.log().Info("dev server listening", slog.String("addr", addr), slog.String("db", dbLabel(db)))
			if err := serveUntilDone(ctx, srv); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.Config.DevAddr, "Listen address (env ACTIVITIES_DEV_ADDR)")
	cmd.Flags().StringVar(&db, "db", app.Config.DevDB, "sqlite database path; empty keeps data in memory (env ACTIVITIES_DEV_DB)")
	cmd.Flags().BoolVar(&seed, "seed", true, "Insert the sample activities when they are missing")
	return cmd
}

func serveUntilDone(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func dbLabel(path string) string {
	if strings.TrimSpace(path) == "" {
		return ":memory:"
	}
	return path
}
