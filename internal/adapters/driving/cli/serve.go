package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the lessonscout HTTP API.

Searches are accepted immediately and run in the background, at most
scheduler.capacity at a time. Progress is available per session over a
websocket at /search/{id}/ws.

Requests authenticate with a bearer token mapped to a user id in the config
file. Tokens are reloaded when the config file changes:
  lessonscout config token add <token> <user>`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger.SetTimestamps(true)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, runtimeOptions{sharedFeed: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	printWarnings(cmd, rt.Warnings)

	if err := rt.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	auth := httpapi.NewTokenAuth(rt.AppSettings.Server.Tokens)
	if auth.Len() == 0 {
		cmd.PrintErrln("warning: no tokens configured; every request will be rejected. " +
			"Add one with 'lessonscout config token add'")
	}

	if err := rt.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer drainScheduler(rt)

	if n, err := rt.Recover(ctx); err != nil {
		log.Error("recovering sessions: %v", err)
	} else if n > 0 {
		log.Info("re-enqueued %d pending sessions", n)
	}

	if rt.WatchConfig != nil {
		go func() {
			if err := rt.WatchConfig(ctx, func() { reloadTokens(rt, auth) }); err != nil {
				log.Warn("config watch stopped: %v", err)
			}
		}()
	}

	server, err := httpapi.NewServer(httpapi.Ports{Search: rt.Search, Scheduler: rt.Scheduler}, auth)
	if err != nil {
		return err
	}

	addr := listenAddr(serveAddr, rt.AppSettings.Server.Addr)
	cmd.Printf("lessonscout listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// listenAddr picks the flag, then the configured address, then the default.
func listenAddr(flag, configured string) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	default:
		return httpapi.DefaultAddr
	}
}

// reloadTokens swaps in the token table from the current config.
func reloadTokens(rt *Runtime, auth *httpapi.TokenAuth) {
	settings, err := rt.Settings.Get()
	if err != nil {
		log.Warn("reloading config: %v", err)
		return
	}
	auth.Set(settings.Server.Tokens)
	log.Info("reloaded %d tokens", auth.Len())
}

// drainScheduler stops admission and waits for in-flight sessions.
func drainScheduler(rt *Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), rt.AppSettings.Scheduler.DrainTimeout)
	defer cancel()
	if err := rt.Scheduler.Stop(ctx); err != nil {
		log.Warn("scheduler drain: %v", err)
	}
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		cmd.PrintErrf("warning: %s\n", w)
	}
}
