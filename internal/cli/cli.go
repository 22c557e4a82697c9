// Package cli implements the icakad command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/icakad/icakad-go/client"
	"github.com/icakad/icakad-go/internal/config"
)

// ShortURLService is what the shorturl commands need from a client.
type ShortURLService interface {
	Add(ctx context.Context, slug, target string) (*client.Body, error)
	Edit(ctx context.Context, slug, target string) (*client.Body, error)
	Delete(ctx context.Context, slug string) (*client.Body, error)
	List(ctx context.Context) (client.Links, error)
}

// PasteService is what the paste commands need from a client.
type PasteService interface {
	Create(ctx context.Context, text string, opts client.CreateOptions) (*client.Body, error)
	Fetch(ctx context.Context, id string) (*client.PasteRecord, error)
	FetchRaw(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) (*client.Body, error)
	List(ctx context.Context) (*client.Body, error)
}

// App wires the commands to their inputs, outputs and clients.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// DotEnv is loaded before the environment is read.
	DotEnv string

	NewShortURL func(s config.Settings, opts ...client.Option) (ShortURLService, error)
	NewPaste    func(s config.Settings, opts ...client.Option) (PasteService, error)

	flags  globalFlags
	logger zerolog.Logger
}

type globalFlags struct {
	token        string
	shortURLBase string
	pasteBase    string
	configPath   string
	saveTo       string
	debug        bool
	quiet        bool
}

// New returns an App bound to the process streams and the real clients.
func New() *App {
	return &App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		DotEnv: ".env",
		NewShortURL: func(s config.Settings, opts ...client.Option) (ShortURLService, error) {
			return client.NewShortURLClient(append(s.ShortURLOptions(), opts...)...)
		},
		NewPaste: func(s config.Settings, opts ...client.Option) (PasteService, error) {
			return client.NewPasteClient(append(s.PasteOptions(), opts...)...)
		},
	}
}

// Run executes the command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.flags = globalFlags{}
	a.logger = zerolog.Nop()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	return a.report(err)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "icakad",
		Short:         "Manage short links and pastes",
		Version:       client.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.setupLogger()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.token, "token", "", "bearer token (default $"+config.EnvToken+")")
	pf.StringVar(&a.flags.shortURLBase, "shorturl-base", "", "base URL of the short-link service")
	pf.StringVar(&a.flags.pasteBase, "paste-base", "", "base URL of the paste service")
	pf.StringVar(&a.flags.configPath, "config", "", "path to a config file")
	pf.StringVar(&a.flags.saveTo, "save-to", "", "also write the result to this file")
	pf.BoolVar(&a.flags.debug, "debug", false, "log HTTP requests to stderr")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "do not print results")

	root.AddCommand(a.shortURLCommand(), a.pasteCommand(), a.versionCommand())
	return root
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.Stdout, client.Version)
		},
	}
}

func (a *App) setupLogger() {
	level := zerolog.WarnLevel
	if a.flags.debug {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (a *App) settings() (config.Settings, error) {
	return config.Load(config.LoadOptions{
		ConfigPath: a.flags.configPath,
		DotEnv:     a.DotEnv,
		Overrides: config.Settings{
			Token:        a.flags.token,
			ShortURLBase: a.flags.shortURLBase,
			PasteBase:    a.flags.pasteBase,
		},
	})
}

func (a *App) shortURLClient() (ShortURLService, error) {
	s, err := a.settings()
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("base", s.ShortURLBase).Dur("timeout", s.ShortURLTimeout).Msg("shorturl client")
	return a.NewShortURL(s, client.WithLogger(a.logger))
}

func (a *App) pasteClient() (PasteService, error) {
	s, err := a.settings()
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("base", s.PasteBase).Dur("timeout", s.PasteTimeout).Msg("paste client")
	return a.NewPaste(s, client.WithLogger(a.logger))
}

// report prints err, and its payload unless --quiet, and returns the exit
// code: the HTTP status when there is one, otherwise 1.
func (a *App) report(err error) int {
	fmt.Fprintln(a.Stderr, err.Error())
	if payload := client.PayloadOf(err); !a.flags.quiet && payload != nil && len(payload.Raw) > 0 {
		fmt.Fprintln(a.Stderr, renderPayload(payload))
	}

	if status := client.StatusCode(err); status > 0 {
		return status
	}
	return 1
}
