package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joy-dx/netpipe"
	"github.com/joy-dx/netpipe/auth"
	"github.com/joy-dx/netpipe/client/httpclient"
	"github.com/joy-dx/netpipe/config"
	"github.com/joy-dx/netpipe/dto"
	"github.com/joy-dx/netpipe/relays"
	"github.com/joy-dx/netpipe/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

var _ pflag.Value = dto.ExtraHeaders{}

const defaultCredentialsFile = "~/.config/netpipe/credentials.toml"

// loadConfig resolves env, file and flag settings, in that order.
func (env *cliEnv) loadConfig() (*config.PipelineConfig, error) {
	cfg := config.LoadEnv()
	if os.Getenv("NETPIPE_CREDENTIALS") == "" {
		// A CLI session has to survive between invocations.
		cfg.WithCredentialBackend(config.BackendFile)
	}
	if cfg.CredentialFile == "" {
		cfg.CredentialFile = defaultCredentialsFile
	}
	if err := config.LoadFile(env.configFile, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	if env.baseURL != "" {
		cfg.WithBaseAddress(env.baseURL)
	}
	if env.timeout != "" {
		d, err := time.ParseDuration(env.timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout %q: %v", config.ErrInvalidConfig, env.timeout, err)
		}
		cfg.WithRequestTimeout(d)
	}
	if env.logLevel != "" {
		cfg.LogLevel = env.logLevel
	}
	if env.credentials != "" {
		cfg.WithCredentialBackend(env.credentials)
	}
	cfg.WithRelay(relays.NewSlogRelayFor(env.stderr, cfg.LogLevel, cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// system builds the standard pipeline. Refresh failures are tagged so the
// process can exit with a dedicated code.
func (env *cliEnv) system(ctx context.Context) (*netpipe.System, *config.PipelineConfig, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	clientCfg := httpclient.DefaultHTTPClientConfig()
	clientCfg.WithMiddleware(httpclient.RequestIDMiddleware())
	transport := httpclient.NewHTTPClient(cfg, &clientCfg)

	var base dto.Refresher = auth.NewEndpointRefresher(transport, cfg.RefreshPath)
	if env.oauthTokenURL != "" {
		base = auth.NewOAuth2Refresher(&oauth2.Config{
			ClientID: env.oauthClientID,
			Endpoint: oauth2.Endpoint{TokenURL: env.oauthTokenURL},
		})
	}
	refresher := dto.RefreshFunc(func(ctx context.Context, refreshToken string) (string, error) {
		token, err := base.Refresh(ctx, refreshToken)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errSessionExpired, err)
		}
		return token, nil
	})

	sys, err := netpipe.Provide(ctx, cfg, netpipe.Deps{
		Transport: transport,
		Refresher: refresher,
	})
	return sys, cfg, err
}

func verbCmd(env *cliEnv, method string) *cobra.Command {
	var (
		data     string
		quiet    bool
		noNotify bool
	)
	params := dto.ExtraHeaders{}
	headers := dto.ExtraHeaders{}

	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " PATH",
		Short: method + " a path relative to the base address",
		Args:  cobra.ExactArgs(1),
		Example: fmt.Sprintf("  netpipe %s /users --param page=2 --header X-Tenant=acme",
			strings.ToLower(method)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := env.system(cmd.Context())
			if err != nil {
				return err
			}

			req := dto.NewRequest(method, args[0]).
				WithParams(params).
				WithHeaders(headers)
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("%w: --data is not valid JSON", config.ErrInvalidConfig)
				}
				req.WithBody(json.RawMessage(data))
			}
			if quiet {
				netpipe.WithSuppressLoading()(req)
			}
			if noNotify {
				netpipe.WithSuppressNotification()(req)
			}

			resp, err := sys.Pipeline.Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeBody(env, resp.Body)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().Var(params, "param", "query parameters as key=value, comma separated")
	cmd.Flags().Var(headers, "header", "request headers as key=value, comma separated")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not drive the loading indicator")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "classify errors without notifying")
	return cmd
}

func batchCmd(env *cliEnv) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch PATH...",
		Short: "GET several paths concurrently, sharing one token refresh",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := env.system(cmd.Context())
			if err != nil {
				return err
			}

			if concurrency < 1 {
				concurrency = 1
			}
			results := make([]string, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i, path := range args {
				g.Go(func() error {
					resp, err := sys.Pipeline.Get(ctx, path)
					if err != nil {
						results[i] = fmt.Sprintf("%s\terror\t%v", path, err)
						return err
					}
					results[i] = fmt.Sprintf("%s\t%d\t%d bytes", path, resp.StatusCode, len(resp.Body))
					return nil
				})
			}
			waitErr := g.Wait()

			for _, line := range results {
				if line != "" {
					fmt.Fprintln(env.stdout, line)
				}
			}
			return waitErr
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "maximum requests in flight")
	return cmd
}

type loginResponse struct {
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func loginCmd(env *cliEnv) *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the access and refresh tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, cfg, err := env.system(cmd.Context())
			if err != nil {
				return err
			}

			session, err := netpipe.PostJSON[loginResponse](cmd.Context(), sys.Pipeline, cfg.LoginEndpoint, map[string]string{
				"username": user,
				"password": password,
			})
			if err != nil {
				return err
			}

			token := session.Token
			if token == "" {
				token = session.AccessToken
			}
			if token == "" {
				return fmt.Errorf("login: %w", auth.ErrEmptyToken)
			}
			if err := sys.Store.Set(cmd.Context(), dto.CredentialAccessToken, token); err != nil {
				return fmt.Errorf("store access token: %w", err)
			}
			if session.RefreshToken != "" {
				if err := sys.Store.Set(cmd.Context(), dto.CredentialRefreshToken, session.RefreshToken); err != nil {
					return fmt.Errorf("store refresh token: %w", err)
				}
			}

			fmt.Fprintln(env.stdout, "logged in")
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := env.system(cmd.Context())
			if err != nil {
				return err
			}
			for _, key := range []string{dto.CredentialAccessToken, dto.CredentialRefreshToken} {
				if err := sys.Store.Remove(cmd.Context(), key); err != nil {
					return fmt.Errorf("remove %s: %w", key, err)
				}
			}
			fmt.Fprintln(env.stdout, "logged out")
			return nil
		},
	}
}

func tokenCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the stored access token claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := env.system(cmd.Context())
			if err != nil {
				return err
			}
			token, err := sys.Store.Get(cmd.Context(), dto.CredentialAccessToken)
			if err != nil {
				return fmt.Errorf("read access token: %w", err)
			}

			fmt.Fprintf(env.stdout, "fingerprint:\t%s\n", utils.Fingerprint(token))
			info, err := auth.Inspect(token)
			if err != nil {
				fmt.Fprintln(env.stdout, "opaque token, no claims")
				return nil
			}
			fmt.Fprintf(env.stdout, "subject:\t%s\n", info.Subject)
			if !info.IssuedAt.IsZero() {
				fmt.Fprintf(env.stdout, "issued:\t%s\n", info.IssuedAt.Format(time.RFC3339))
			}
			if !info.Expiry.IsZero() {
				fmt.Fprintf(env.stdout, "expires:\t%s\n", info.Expiry.Format(time.RFC3339))
			}
			fmt.Fprintf(env.stdout, "expired:\t%t\n", info.IsExpired(0))
			return nil
		},
	}
}

func writeBody(env *cliEnv, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		pretty.WriteByte('\n')
		_, err := env.stdout.Write(pretty.Bytes())
		return err
	}
	_, err := fmt.Fprintln(env.stdout, string(body))
	return err
}
