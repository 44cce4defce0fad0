package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/juli/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve workspace changes to application windows",
	Long: `Load the workspace registry and push every change to connected windows.

Windows subscribe over server-sent events (GET /events) or a WebSocket
(GET /ws). A small JSON API lists workspaces and switches the active one:

  GET /api/workspaces
  GET /api/workspaces/active
  GET /api/workspaces/{id}
  PUT /api/workspaces/{id}/active

The server stops on Ctrl+C or SIGTERM after pending disk cleanups finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "Address to listen on (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(logger)

	hubDone := make(chan struct{})

	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	r, closeFn, err := openRegistry(hub)
	if err != nil {
		stop()
		<-hubDone

		return err
	}
	defer closeFn()

	r.Init()

	logger.Info("workspaces loaded", "count", r.Count(), "data_dir", cfg.DataDir, "backend", cfg.Backend)

	srv := server.New(cfg.Listen, hub, r, logger)
	err = srv.ListenAndServe(ctx)

	stop()
	<-hubDone

	return err
}
