package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tj-smith47/iot-go/internal/mockplatform"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory IoT platform for local development",
	Long: `Serve the device management service under /dms, the message management
service under /mms and the token endpoint at /oauth/token.

Point iotctl at it with:
  iotctl --dms-url http://localhost:8089/dms --mms-url http://localhost:8089/mms devices list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := newLogger("dev", verbose)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		addr, _ := cmd.Flags().GetString("addr")
		clients, _ := cmd.Flags().GetStringSlice("client")
		requireToken, _ := cmd.Flags().GetBool("require-token")

		var opts []mockplatform.Option
		for _, c := range clients {
			id, secret, ok := strings.Cut(c, ":")
			if !ok {
				return fmt.Errorf("expected id:secret, got %q", c)
			}
			opts = append(opts, mockplatform.WithClient(id, secret))
		}
		if requireToken {
			opts = append(opts, mockplatform.WithRequireToken())
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           mockplatform.New(opts...).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("mock platform listening", zap.String("addr", addr), zap.Bool("require_token", requireToken))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	mockServerCmd.Flags().String("addr", ":8089", "listen address")
	mockServerCmd.Flags().StringSlice("client", []string{"iotctl:secret"}, "accepted OAuth client as id:secret (repeatable)")
	mockServerCmd.Flags().Bool("require-token", false, "reject DMS/MMS requests without a bearer token")

	rootCmd.AddCommand(mockServerCmd)
}
