package cli

import (
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"activities-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr, title string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser client (live updates over SSE)",
		Example: strings.TrimSpace(`
  activities web
  activities web --addr 127.0.0.1:4000 --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.client()
			srv, err := web.NewServer(web.ServerConfig{
				Addr:  addr,
				Title: title,
			}, c, app.dispatcher(c), app.log())
			if err != nil {
				return writeErr(cmd, err)
			}

			url := "http://" + srv.Addr() + "/"
			app.log().Info("web client listening", slog.String("url", url), slog.String("service", c.BaseURL()))
			if open {
				go func() {
					if err := openPath(url); err != nil {
						app.log().Warn("open browser failed", slog.Any("error", err))
					}
				}()
			}
			if err := srv.ListenAndServe(commandContext(cmd)); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.Config.WebAddr, "Listen address (env ACTIVITIES_WEB_ADDR)")
	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().BoolVar(&open, "open", false, "Open the page in a browser")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
