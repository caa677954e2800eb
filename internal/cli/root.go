package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"penora-write/internal/account"
	"penora-write/internal/app"
	"penora-write/internal/config"
	"penora-write/internal/database"
	"penora-write/internal/generation"
	"penora-write/internal/session"
	"penora-write/pkg/taskmanager"
	"penora-write/shared/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options позволяет подменить зависимости CLI (в тестах)
type Options struct {
	Config     *config.Config
	Store      database.KeyValueStore
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

// env - окружение одного запуска: конфигурация, хранилище и Workspace
type env struct {
	opts Options

	ephemeral bool
	apiURL    string
	envFile   string

	store     database.KeyValueStore
	ownsStore bool
	log       *zap.Logger
	ws        *app.Workspace
}

// NewRootCommand собирает дерево команд penora
func NewRootCommand(opts Options) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:   "penora",
		Short: "Penora Write - generate, save and export short stories, novels, chapters and poems",
		Long: `penora talks to the Penora Write Account Service and Generation Service.
The session is kept in a local store, so each command starts where the previous one ended.`,
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&e.ephemeral, "ephemeral", false, "keep the session in memory only")
	root.PersistentFlags().StringVar(&e.apiURL, "api-url", "", "Account and Generation Service base URL")
	root.PersistentFlags().StringVar(&e.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(
		newLoginCmd(e),
		newSignupCmd(e),
		newGoogleLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newGenerateCmd(e),
		newStoriesCmd(e),
		newSettingsCmd(e),
	)
	return root
}

// Execute запускает CLI с настройками по умолчанию
func Execute() {
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// workspace лениво создает Workspace и восстанавливает сессию
func (e *env) workspace(ctx context.Context) (*app.Workspace, error) {
	if e.ws != nil {
		return e.ws, nil
	}

	cfg := e.opts.Config
	if cfg == nil {
		var files []string
		if e.envFile != "" {
			files = append(files, e.envFile)
		}
		loaded, err := config.Load(files...)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if e.apiURL != "" {
		cfg.APIURL = e.apiURL
		cfg.GenerationURL = e.apiURL
	}

	e.log = e.opts.Logger
	if e.log == nil {
		l, err := logger.New(cfg.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		e.log = l
	}

	e.store = e.opts.Store
	if e.store == nil {
		dbCfg := cfg.Database()
		if e.ephemeral {
			dbCfg.Driver = database.DriverMemory
		}
		store, err := database.Open(ctx, dbCfg, e.log)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		e.store = store
		e.ownsStore = true
	}

	genCfg := cfg.Generation()
	genCfg.HTTPClient = e.opts.HTTPClient
	generator, err := generation.New(genCfg, e.log)
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Reconcile()
	if err != nil {
		return nil, err
	}

	e.ws = app.New(app.Options{
		Accounts: account.NewClient(account.ClientConfig{
			BaseURL:    cfg.APIURL,
			Timeout:    cfg.HTTPTimeout,
			HTTPClient: e.opts.HTTPClient,
		}, e.log),
		Generator:     generator,
		Session:       session.NewStore(e.store, e.log),
		Tasks:         taskmanager.New(taskmanager.Config{MaxTasks: cfg.MaxTasks}),
		ReconcileMode: mode,
		Now:           e.opts.Now,
		Logger:        e.log,
	})
	if _, err := e.ws.Restore(ctx); err != nil {
		return nil, err
	}
	return e.ws, nil
}

func (e *env) close(ctx context.Context) error {
	if e.ws != nil {
		if err := e.ws.Wait(ctx); err != nil {
			e.log.Warn("Pending tasks did not finish", zap.Error(err))
		}
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}
