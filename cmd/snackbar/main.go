package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/smallbiznis/snackbar/internal/app"
	"github.com/smallbiznis/snackbar/internal/auditcontext"
	"github.com/smallbiznis/snackbar/pkg/telemetry/correlation"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// run executes one register command against a freshly started application.
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return errUsage
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.String("user", "", "attendant recorded in the action log")
	exec := cmd.setup(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return err
	}

	var svc app.Services
	application := fx.New(
		app.Module,
		fx.NopLogger,
		fx.Invoke(func(s app.Services) { svc = s }),
	)
	if err := application.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()

	ctx, _ := correlation.EnsureCorrelationID(context.Background())
	ctx = auditcontext.WithActor(ctx, *user)
	return exec(ctx, svc, stdout)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Snack bar register")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snackbar <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %-*s  %s\n", width, name, commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration comes from the environment (STORE_BACKEND, SQLITE_PATH, ...) and pos.yml.")
	fmt.Fprintln(w, "Run snackbar <command> --help for command flags.")
}
