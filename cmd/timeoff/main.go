package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/csg33k/timeoff-request/internal/adapters/httpbackend"
	"github.com/csg33k/timeoff-request/internal/adapters/pdf"
	sqliteadapter "github.com/csg33k/timeoff-request/internal/adapters/sqlite"
	"github.com/csg33k/timeoff-request/internal/config"
	"github.com/csg33k/timeoff-request/internal/handlers"
	"github.com/csg33k/timeoff-request/internal/ports"
	"github.com/csg33k/timeoff-request/internal/quotes"
	"github.com/csg33k/timeoff-request/internal/submission"
	"github.com/csg33k/timeoff-request/internal/terminal"
	"github.com/csg33k/timeoff-request/internal/token"
)

// appVersion is set at build time with -ldflags "-X main.appVersion=...".
var appVersion = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var endpoint string

	root := &cobra.Command{
		Use:           "timeoff",
		Short:         "Time off request form (web or terminal)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = appVersion
	root.SetVersionTemplate("timeoff v{{.Version}}\n")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Form backend URL (overrides TIMEOFF_ENDPOINT_URL)")

	load := func() (*app, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if endpoint != "" {
			cfg.EndpointURL = endpoint
		}
		return newApp(cfg)
	}

	root.AddCommand(newServeCmd(load), newSubmitCmd(load), newReceiptCmd(load), newVersionCmd())
	return root
}

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	backend *httpbackend.Client
	quotes  ports.QuoteSource
	journal ports.AttemptJournal
	close   func() error
}

func newApp(cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, log: cfg.NewLogger(), close: func() error { return nil }}
	slog.SetDefault(a.log)

	var client *http.Client
	if cfg.RequestTimeout > 0 {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	a.backend = httpbackend.New(cfg.EndpointURL, client)
	if !a.backend.Configured() {
		a.log.Warn("TIMEOFF_ENDPOINT_URL not set; submissions will be refused")
	}

	if cfg.QuotesEnabled {
		book, err := quotes.Load(cfg.QuotesFile)
		if err != nil {
			return nil, err
		}
		a.quotes = book
	}

	if cfg.DBPath != "" {
		repo, err := sqliteadapter.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journal = repo
		a.close = repo.Close
	}
	return a, nil
}

func newServeCmd(load func() (*app, error)) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()
			if port != "" {
				a.cfg.Port = port
			}

			h := handlers.New(handlers.Deps{
				Backend:  a.backend,
				Tokens:   token.NewRegistry(a.cfg.TokenCapacity, a.cfg.TokenTTL),
				Quotes:   a.quotes,
				Journal:  a.journal,
				Receipts: pdf.New(),
				Logger:   a.log,
			})
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           h.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.log.Info("time off form listening", "addr", "http://localhost:"+a.cfg.Port,
					"journal", a.cfg.DBPath, "endpoint", a.backend.Endpoint())
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

func newSubmitCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Fill in and submit a request from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			opts := []submission.Option{submission.WithLogger(a.log), submission.WithJournal(a.journal)}
			if a.quotes != nil {
				opts = append(opts, submission.WithQuotes(a.quotes))
			}
			s := terminal.NewSession(terminal.NewSurveyDriver(), a.backend, opts...)

			if _, err := s.Run(cmd.Context()); err != nil {
				if errors.Is(err, terminal.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newReceiptCmd(load func() (*app, error)) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "receipt <attempt-id>",
		Short: "Write the PDF receipt of a journaled request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid attempt id %q", args[0])
			}
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()
			if a.journal == nil {
				return errors.New("DB_PATH is not set; no journal to read")
			}

			attempt, err := a.journal.GetAttempt(cmd.Context(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("timeoff_%d_%s.pdf", attempt.ID, attempt.CreatedAt.Format("20060102"))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := pdf.New().Generate(cmd.Context(), attempt, f); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default timeoff_<id>_<date>.pdf)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timeoff v%s\n", appVersion)
		},
	}
}
