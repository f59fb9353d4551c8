// Package cli provides the apidesk command line: the terminal UI and
// non-interactive commands over the same workbench.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"apidesk/internal/config"
	"apidesk/internal/logging"
	"apidesk/internal/model"
	"apidesk/internal/openapi"
	"apidesk/internal/render"
	"apidesk/internal/storage"
	"apidesk/internal/ui"
	"apidesk/internal/workbench"
)

type CLI struct {
	v       *viper.Viper
	rootCmd *cobra.Command
	cfgFile string
	cfg     config.Config
	log     zerolog.Logger
	errOut  io.Writer
}

func New() *CLI {
	c := &CLI{v: config.New(), log: zerolog.Nop(), errOut: os.Stderr}

	c.rootCmd = &cobra.Command{
		Use:           "apidesk",
		Short:         "Browse and try out OpenAPI / Swagger APIs from the terminal",
		Long:          "apidesk loads an OpenAPI 3 or Swagger 2 JSON document and lets you browse its endpoints, generate example payloads and send requests, interactively or from scripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runUI,
	}
	c.rootCmd.PersistentPreRunE = c.loadConfig

	c.setupFlags()
	c.rootCmd.AddCommand(
		&cobra.Command{Use: "ui", Short: "Open the terminal UI (default)", Args: cobra.NoArgs, RunE: c.runUI},
		c.treeCmd(),
		c.showCmd(),
		c.exampleCmd(),
		c.sendCmd(),
		c.exportCmd(),
		c.headersCmd(),
		c.rulesCmd(),
		c.envCmd(),
	)
	return c
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default ./apidesk.yaml or $HOME/.config/apidesk/apidesk.yaml)")
	flags.String("spec", "", "API document: file path or http(s) URL")
	flags.String("base-url", "", "base URL for requests, overrides environments and document servers")
	flags.Bool("debug", false, "debug logging")

	_ = c.v.BindPFlag("spec", flags.Lookup("spec"))
	_ = c.v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = c.v.BindPFlag("debug", flags.Lookup("debug"))
}

// SetOutput redirects command output and notices.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
	c.errOut = errOut
}

func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) Execute(ctx context.Context) error {
	return c.rootCmd.ExecuteContext(ctx)
}

func (c *CLI) loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logging.Console(c.errOut, cfg.Debug)
	return nil
}

func (c *CLI) options() workbench.Options {
	return workbench.Options{
		BaseURL:        c.cfg.BaseURL,
		Environments:   c.cfg.Environments,
		GlobalHeaders:  c.cfg.GlobalHeaders,
		DarkMode:       c.cfg.DarkMode,
		RequestTimeout: c.cfg.RequestTimeout,
	}
}

// session is one command's view of durable storage and the document.
type session struct {
	db    *storage.SQLite
	bench *workbench.Workbench
}

func (s *session) Close() error {
	return s.db.Close()
}

func (c *CLI) open(ctx context.Context, withDoc bool) (*session, error) {
	db, err := storage.OpenSQLite(c.cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	var doc *model.Document
	if withDoc {
		doc, err = openapi.NewLoader(c.log).Load(ctx, c.cfg.Spec)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load document: %w", err)
		}
	}
	bench := workbench.New(doc, workbench.Stores{Durable: db, Session: storage.NewMemory()}, c.options(), c.log)
	bench.AddListener(workbench.ListenerFunc(func(n workbench.Notice) {
		if n.Level == workbench.Info {
			fmt.Fprintln(c.errOut, n.Message)
		}
	}))
	return &session{db: db, bench: bench}, nil
}

// painter colors output only when writing to a color-capable stdout.
func (c *CLI) painter(cmd *cobra.Command, s *session) render.Painter {
	enabled := cmd.OutOrStdout() == io.Writer(os.Stdout) && !color.NoColor
	prefs := s.bench.Prefs()
	return render.NewPainter(enabled, prefs.ThemeColor(), prefs.DarkMode())
}

func (c *CLI) runUI(cmd *cobra.Command, _ []string) error {
	log, closer, err := logging.TUI(c.cfg.Debug)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	db, err := storage.OpenSQLite(c.cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	loader := openapi.NewLoader(log)
	doc, loadErr := loader.Load(cmd.Context(), c.cfg.Spec)
	if loadErr != nil {
		log.Error().Err(loadErr).Str("source", c.cfg.Spec).Msg("could not load document")
	}
	bench := workbench.New(doc, workbench.Stores{Durable: db, Session: storage.NewMemory()}, c.options(), log)

	app := ui.New(bench, ui.Options{
		Title:   c.cfg.Title,
		LoadErr: loadErr,
		Reload: func(ctx context.Context) (*model.Document, error) {
			return loader.Load(ctx, c.cfg.Spec)
		},
	}, log)
	return app.Run(cmd.Context())
}
