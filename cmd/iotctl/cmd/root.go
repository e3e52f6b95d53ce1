package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	iot "github.com/tj-smith47/iot-go"
	"github.com/tj-smith47/iot-go/internal/config"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "iotctl",
	Short: "Command line client for the IoT device and message management services",
	Long: `iotctl drives the IoT services REST API: device types, message types,
devices, service configuration, table mapping and device data.

Settings come from ~/.config/iotctl/config.yaml, a .env file and IOT_*
environment variables; flags win over all of them.

Examples:
  iotctl login --client-id my-client
  iotctl devices list -q "[].name"
  iotctl data post 389786b3 --message-type f1b3f360 --messages '[{"speed":6}]'`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetVersionTemplate("iotctl version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ~/.config/iotctl/config.yaml)")
	flags.String("dms-url", "", "device management service base URL")
	flags.String("mms-url", "", "message management service base URL")
	flags.String("token", "", "bearer token (default: token saved by 'iotctl login')")
	flags.StringP("query", "q", "", "JMESPath expression applied to the response")
	flags.StringP("output", "o", "json", "output format: json or yaml")
	flags.BoolP("verbose", "v", false, "log HTTP traffic")
}

// app bundles what every command needs.
type app struct {
	cfg        *config.Config
	configPath string
	client     *iot.Client
	log        *zap.Logger
	out        io.Writer
	query      string
	format     string
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("dms-url"); v != "" {
		cfg.DMSURL = v
	}
	if v, _ := cmd.Flags().GetString("mms-url"); v != "" {
		cfg.MMSURL = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Token = v
	}
	if cfg.Token == "" {
		tok, valid, err := iot.LoadValidToken(cmd.Context(), iot.NewFileTokenStore(cfg.TokenFile))
		if err != nil {
			return nil, err
		}
		if valid {
			cfg.Token = tok.AccessToken
		}
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(cfg.Env, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts := append(cfg.ClientOptions(),
		iot.WithNotifier(iot.ZapNotifier{Logger: logger}),
		iot.WithUserAgent("iotctl/"+version),
	)
	if verbose {
		opts = append(opts, iot.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	client, err := iot.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	query, _ := cmd.Flags().GetString("query")
	format, _ := cmd.Flags().GetString("output")

	return &app{
		cfg:        cfg,
		configPath: configPath,
		client:     client,
		log:        logger,
		out:        cmd.OutOrStdout(),
		query:      query,
		format:     format,
	}, nil
}

func newLogger(env string, verbose bool) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// wait blocks on call and prints its body. Failure messages have already
// been shown by the client's notifier.
func (a *app) wait(call *iot.Call) error {
	defer a.log.Sync() //nolint:errcheck
	res := call.Wait()
	if res.Failure != nil {
		env := res.Failure.Envelope()
		return fmt.Errorf("%s (%s)", env.Message, env.TextCode)
	}
	return a.print(res.Body)
}
