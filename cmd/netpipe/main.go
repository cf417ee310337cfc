package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/joy-dx/netpipe/apierr"
	"github.com/joy-dx/netpipe/config"
	"github.com/spf13/cobra"
)

// Injected at build time via ldflags.
var version = "dev"

const (
	ExitOK             = 0
	ExitGeneral        = 1
	ExitSessionExpired = 2
	ExitConfig         = 3
	ExitInterrupt      = 130
)

var errSessionExpired = errors.New("session expired, run netpipe login")

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd(&cliEnv{stdout: os.Stdout, stderr: os.Stderr})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// cliEnv carries the streams and global flags shared by every command.
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer

	configFile    string
	baseURL       string
	timeout       string
	logLevel      string
	credentials   string
	oauthTokenURL string
	oauthClientID string
}

func newRootCmd(env *cliEnv) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "netpipe",
		Short:         "Send authenticated API requests through the netpipe pipeline",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "~/.config/netpipe/config.toml", "TOML config file")
	flags.StringVar(&env.baseURL, "base-url", "", "API base address (overrides NETPIPE_BASE_URL)")
	flags.StringVar(&env.timeout, "timeout", "", "per-request timeout, e.g. 30s or 60000")
	flags.StringVar(&env.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&env.credentials, "credentials", "", "credential backend: memory, file, redis or s3")
	flags.StringVar(&env.oauthTokenURL, "oauth-token-url", "", "refresh through an OAuth2 token endpoint instead of the refresh path")
	flags.StringVar(&env.oauthClientID, "oauth-client-id", "", "OAuth2 client id used with --oauth-token-url")

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		rootCmd.AddCommand(verbCmd(env, method))
	}
	rootCmd.AddCommand(batchCmd(env))
	rootCmd.AddCommand(loginCmd(env))
	rootCmd.AddCommand(logoutCmd(env))
	rootCmd.AddCommand(tokenCmd(env))
	return rootCmd
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return ExitConfig
	}
	if errors.Is(err, errSessionExpired) {
		return ExitSessionExpired
	}
	var domainErr *apierr.DomainError
	if errors.As(err, &domainErr) {
		return ExitGeneral
	}
	if isCobraUsageError(err) {
		return ExitConfig
	}
	return ExitGeneral
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range []string{"unknown flag", "unknown command", "accepts ", "requires at least", "invalid argument"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
