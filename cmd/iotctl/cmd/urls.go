package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tj-smith47/iot-go/internal/config"
)

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Show the service base URLs in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		e := a.client.Endpoints()
		return render(a.out, a.format, map[string]string{
			"dms":   e.DMS,
			"mms":   e.MMS,
			"token": a.client.TokenURL(),
		})
	},
}

var urlsSetCmd = &cobra.Command{
	Use:   "set DMS_URL MMS_URL",
	Short: "Save new service base URLs to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.client.SetServiceURL(args[0], args[1])
		e := a.client.Endpoints()
		err = config.Update(a.configPath, func(c *config.Config) {
			c.DMSURL = e.DMS
			c.MMSURL = e.MMS
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved to %s\n", a.configPath)
		return nil
	},
}

func init() {
	urlsCmd.AddCommand(urlsSetCmd)
	rootCmd.AddCommand(urlsCmd)
}
