// Package cli implements customerctl, a terminal front end that drives the
// customer controller against either the local data file or the HTTP API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"customer-manager/internal/config"
	"customer-manager/internal/controller"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/infrastructure/logging"
	"customer-manager/internal/infrastructure/remote"
	"customer-manager/internal/infrastructure/storage/local"

	"github.com/spf13/cobra"
)

const localOpenTimeout = 2 * time.Second

// reportedError marks failures the controller already showed to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

type options struct {
	configPath string
	mode       string
	apiURL     string
	dataFile   string
	verbose    bool

	in  io.Reader
	out io.Writer
	err io.Writer
}

// Execute runs customerctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := NewRootCommand(in, out, errOut)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{in: in, out: out, err: errOut}

	root := &cobra.Command{
		Use:           "customerctl",
		Short:         "Manage customer records from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", ".", "Directory containing config.yml")
	flags.StringVar(&opts.mode, "mode", "", "Record store to use: local or remote (overrides client.mode)")
	flags.StringVar(&opts.apiURL, "api-url", "", "Base URL of the customer API in remote mode")
	flags.StringVar(&opts.dataFile, "data-file", "", "Path of the local data file in local mode")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newListCommand(opts),
		newShowCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
	)
	return root
}

// session is one command's controller plus the store it owns.
type session struct {
	ctrl  *controller.Controller
	close func() error
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.mode != "" {
		cfg.Client.Mode = o.mode
	}
	if o.apiURL != "" {
		cfg.Client.APIURL = o.apiURL
	}
	if o.dataFile != "" {
		cfg.Client.DataFile = o.dataFile
	}
	cfg.Client.Mode = strings.ToLower(strings.TrimSpace(cfg.Client.Mode))
	return cfg, nil
}

func (o *options) logger() *slog.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logging.NewLoggerTo(o.err, config.LoggerConfig{Level: level, Encoding: "text"})
}

func (o *options) open(view *terminalView, confirmer controller.Confirmer) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := o.logger()

	repo, closeRepo, err := openRepository(cfg.Client, logger)
	if err != nil {
		return nil, err
	}

	ctrl := controller.New(repo, controller.Mode(cfg.Client.Mode), view, terminalNotifier{out: o.out}, confirmer, logger)
	return &session{ctrl: ctrl, close: closeRepo}, nil
}

func openRepository(cfg config.ClientConfig, logger *slog.Logger) (customer.Repository, func() error, error) {
	switch cfg.Mode {
	case config.ModeLocal:
		store, err := local.Open(cfg.DataFile, localOpenTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.ModeRemote:
		client, err := remote.NewCustomerClient(remote.Config{
			BaseURL: cfg.APIURL,
			Token:   cfg.APIToken,
			Timeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown client mode %q, expected %s or %s", cfg.Mode, config.ModeLocal, config.ModeRemote)
	}
}

// run opens a session, hands its controller to fn and closes the store.
func (o *options) run(view *terminalView, confirmer controller.Confirmer, fn func(*controller.Controller) error) (err error) {
	s, err := o.open(view, confirmer)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(s.ctrl); err != nil {
		return reportedError{err: err}
	}
	return nil
}

func parseCustomerID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid customer id %q", arg)
	}
	return id, nil
}
