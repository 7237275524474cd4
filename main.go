package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"telegram-mood-diary/internal/checkin"
	"telegram-mood-diary/internal/config"
	"telegram-mood-diary/internal/handlers"
	"telegram-mood-diary/internal/health"
	"telegram-mood-diary/internal/messages"
	"telegram-mood-diary/internal/models"
	"telegram-mood-diary/internal/report"
	"telegram-mood-diary/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:           "mood-diary",
	Short:         "Telegram bot that tracks daily mood",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot and the keep-alive server",
	RunE:  runBot,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a mood summary for a user from the database",
	Long: `Print a mood summary for a user from the database.

Examples:
  mood-diary report --user 123456 --window week
  mood-diary report --user 123456 --window all`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int64("user", 0, "telegram user id")
	reportCmd.Flags().String("window", string(models.WindowWeek), "week, month or all")
	_ = reportCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(runCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.DBName)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer db.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	log.Info("bot authorized", "username", bot.Self.UserName)

	out := messages.NewTelegram(bot)
	diary, err := checkin.New(db, out, checkin.Config{
		ReminderDelay: cfg.ReminderDelay,
		Location:      cfg.Location,
		Windows:       cfg.Windows,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	defer diary.Close()

	h := handlers.NewHandler(out, diary, db, bot.Self.UserName, log)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.UpdateTimeout
	updates := bot.GetUpdatesChan(updateConfig)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.Listen(gctx, updates)
	})
	g.Go(func() error {
		<-gctx.Done()
		bot.StopReceivingUpdates()
		return nil
	})

	if cfg.HTTPAddr != "off" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           health.NewRouter(db),
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return gctx },
		}
		g.Go(func() error {
			log.Info("keep-alive server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("keep-alive server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	log.Info("bot started")
	err = g.Wait()
	log.Info("bot stopped")
	return err
}

func runReport(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	name, _ := cmd.Flags().GetString("window")

	w, err := models.ParseWindow(name)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := storage.New(cfg.DBName)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer db.Close()

	today := time.Now().In(cfg.Location)
	since, err := cfg.Windows.Since(w, today)
	if err != nil {
		return err
	}
	entries, err := db.Query(cmd.Context(), userID, since)
	if err != nil {
		return err
	}

	sum, err := cfg.Windows.Summarize(entries, w, today)
	if errors.Is(err, report.ErrNoData) {
		fmt.Fprintln(cmd.OutOrStdout(), messages.TextNoData)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), messages.Summary(sum))
	return nil
}
