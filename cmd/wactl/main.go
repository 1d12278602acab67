// wactl is a command line client for the WhatsApp messaging platform.
//
//	wactl [flags] <resource> <action> [args]
//
// Connection settings come from flags, WA_* environment variables or
// configs/.env, in that order.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/samvad-hq/waplatform-go/internal/config"
	"github.com/samvad-hq/waplatform-go/internal/logger"
	"github.com/samvad-hq/waplatform-go/pkg/waapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "wactl: %v\n", err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	_ = godotenv.Load("configs/.env")

	opts := &options{}
	fs := newFlagSet(opts, stderr)
	if err := fs.Parse(argv); err != nil {
		return err
	}
	args := fs.Args()
	if len(args) < 2 {
		printUsage(fs, stderr)
		return pflag.ErrHelp
	}

	cmd, err := lookup(args[0], args[1])
	if err != nil {
		printUsage(fs, stderr)
		return err
	}
	if len(args)-2 < cmd.minArgs {
		return fmt.Errorf("%s %s: usage: %s", args[0], args[1], cmd.usage)
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"wa_api_key":         "api-key",
		"wa_base_url":        "base-url",
		"wa_timeout_seconds": "timeout",
		"wa_max_retries":     "max-retries",
		"log_level":          "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var log waapi.Logger = logger.NopLogger{}
	if opts.verbose {
		zl, err := logger.Init(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()
		log = zl
	}

	client, err := waapi.New(cfg.ClientConfig(), cfg.ClientOptions(log)...)
	if err != nil {
		return err
	}

	env := &cmdEnv{client: client, opts: opts, args: args[2:], stdout: stdout}

	res, err := cmd.run(ctx, env)
	if err != nil {
		return describeError(err)
	}
	if res == nil {
		return nil
	}
	return printJSON(stdout, res)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeError adds the response body to API failures.
func describeError(err error) error {
	var apiErr *waapi.Error
	if !errors.As(err, &apiErr) || len(apiErr.Raw) == 0 {
		return err
	}
	return fmt.Errorf("%w\n%s", err, strings.TrimSpace(string(apiErr.Raw)))
}
