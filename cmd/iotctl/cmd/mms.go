package cmd

import (
	"github.com/spf13/cobra"

	iot "github.com/tj-smith47/iot-go"
)

var serviceConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change the message management service configuration",
}

var serviceConfigGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the service configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetConfig(cmd.Context(), nil, nil))
	},
}

var serviceConfigSetCmd = &cobra.Command{
	Use:   "set [KEY=VALUE...]",
	Short: "Replace service configuration properties",
	Long: `Send configuration properties to the message management service.

Examples:
  iotctl config set --file @config.yaml
  iotctl config set retention=30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var body any
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			if body, err = loadDocument(file); err != nil {
				return err
			}
		} else {
			kv, err := keyValues(args)
			if err != nil {
				return err
			}
			body = iot.ServiceConfig(kv)
		}
		return a.wait(a.client.SetConfig(cmd.Context(), body, nil, nil))
	},
}

var mapTableCmd = &cobra.Command{
	Use:   "map-table DEVICE_TYPE MESSAGE_TYPE [KEY=VALUE...]",
	Short: "Customize the database table messages are stored in",
	Long: `Configure the sql processing service for a device type / message type pair.

Examples:
  iotctl map-table 7c8f f1b3 tableName=T_SPEED
  iotctl map-table 7c8f f1b3 --properties @mapping.yaml`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var props any
		if file, _ := cmd.Flags().GetString("properties"); file != "" {
			if props, err = loadDocument(file); err != nil {
				return err
			}
		} else {
			if props, err = keyValues(args[2:]); err != nil {
				return err
			}
		}
		return a.wait(a.client.MapTable(cmd.Context(), args[0], args[1], props, nil, nil))
	},
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Send or receive device data",
}

var dataGetCmd = &cobra.Command{
	Use:   "get DEVICE",
	Short: "Receive the messages pushed to a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetData(cmd.Context(), args[0], nil, nil))
	},
}

var dataPostCmd = &cobra.Command{
	Use:   "post DEVICE",
	Short: "Send messages on behalf of a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		mode, _ := cmd.Flags().GetString("mode")
		messageType, _ := cmd.Flags().GetString("message-type")
		raw, _ := cmd.Flags().GetString("messages")
		messages, err := loadDocument(raw)
		if err != nil {
			return err
		}
		return a.wait(a.client.PostData(cmd.Context(), args[0], iot.DataMode(mode), messageType, messages, nil, nil))
	},
}

var pushCmd = &cobra.Command{
	Use:   "push DEVICE",
	Short: "Push messages to a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		method, _ := cmd.Flags().GetString("method")
		sender, _ := cmd.Flags().GetString("sender")
		messageType, _ := cmd.Flags().GetString("message-type")
		raw, _ := cmd.Flags().GetString("messages")
		messages, err := loadDocument(raw)
		if err != nil {
			return err
		}
		return a.wait(a.client.PushData(cmd.Context(), args[0], iot.PushMethod(method), sender, messageType, messages, nil, nil))
	},
}

func init() {
	serviceConfigSetCmd.Flags().String("file", "", "configuration document (inline, @file or - for stdin)")
	serviceConfigCmd.AddCommand(serviceConfigGetCmd, serviceConfigSetCmd)

	mapTableCmd.Flags().String("properties", "", "processing properties document (inline, @file or - for stdin)")

	dataPostCmd.Flags().String("mode", string(iot.ModeSync), "sync, async or async-ack")
	dataPostCmd.Flags().String("message-type", "", "message type ID")
	dataPostCmd.Flags().String("messages", "", "messages document (inline, @file or - for stdin)")
	_ = dataPostCmd.MarkFlagRequired("message-type")
	_ = dataPostCmd.MarkFlagRequired("messages")
	dataCmd.AddCommand(dataGetCmd, dataPostCmd)

	pushCmd.Flags().String("method", string(iot.PushHTTP), "http or ws")
	pushCmd.Flags().String("sender", "iotctl", "sender name")
	pushCmd.Flags().String("message-type", "", "message type ID")
	pushCmd.Flags().String("messages", "", "messages document (inline, @file or - for stdin)")
	_ = pushCmd.MarkFlagRequired("message-type")
	_ = pushCmd.MarkFlagRequired("messages")

	rootCmd.AddCommand(serviceConfigCmd, mapTableCmd, dataCmd, pushCmd)
}
