package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/aihub/internal/aggregate"
	"github.com/pdiddy/aihub/internal/api"
	"github.com/pdiddy/aihub/internal/chat"
	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/internal/source"
	"github.com/pdiddy/aihub/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve starts the aihub HTTP API: ranked search across every source,
per-source search, repository details, chat, accounts, bookmarks and the
community upload queue.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	reg, gh, err := source.New(cfg.Sources, log)
	if err != nil {
		return err
	}
	pipeline := aggregate.NewPipeline(reg, cfg.Sources.Timeout, log)

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	chatClient := chat.New(cfg.Chat, &httputil.Client{
		HTTP:      &http.Client{Timeout: cfg.Chat.Timeout},
		UserAgent: cfg.Chat.UserAgent,
		Log:       log,
	})
	if !chatClient.Enabled() {
		log.Warn().Msg("no OpenAI API key configured, /chat is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(cfg.Server, pipeline, gh, st, chatClient, log)
	if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
