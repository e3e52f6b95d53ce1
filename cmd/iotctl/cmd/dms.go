package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	iot "github.com/tj-smith47/iot-go"
)

var dataTypesCmd = &cobra.Command{
	Use:   "datatypes",
	Short: "List the data types message fields can use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetDataTypes(cmd.Context(), nil, nil))
	},
}

var deviceTypesCmd = &cobra.Command{
	Use:     "devicetypes",
	Aliases: []string{"dt"},
	Short:   "Manage device types",
}

var deviceTypesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List device types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetDeviceTypes(cmd.Context(), nil, nil))
	},
}

var deviceTypesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a device type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.AddDeviceType(cmd.Context(), args[0], nil, nil))
	},
}

var deviceTypesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a device type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.DeleteDeviceType(cmd.Context(), args[0], nil, nil))
	},
}

var messageTypesCmd = &cobra.Command{
	Use:     "messagetypes",
	Aliases: []string{"mt"},
	Short:   "Manage message types",
}

var messageTypesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List message types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetMessageTypes(cmd.Context(), nil, nil))
	},
}

var messageTypesAddCmd = &cobra.Command{
	Use:   "add [NAME]",
	Short: "Create a message type",
	Long: `Create a message type from flags or from a JSON/YAML document.

Fields are numbered in the order given.

Examples:
  iotctl messagetypes add speed --device-type 7c8f --field timestamp:long --field speed:double
  iotctl messagetypes add --file @messagetype.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		mt := &iot.MessageType{}
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			if err := decodeDocument(file, mt); err != nil {
				return err
			}
		}
		if len(args) == 1 {
			mt.Name = args[0]
		}
		if v, _ := cmd.Flags().GetString("device-type"); v != "" {
			mt.DeviceType = v
		}
		if v, _ := cmd.Flags().GetString("direction"); v != "" {
			mt.Direction = iot.MessageDirection(v)
		}
		fields, _ := cmd.Flags().GetStringArray("field")
		for _, f := range fields {
			name, typ, ok := strings.Cut(f, ":")
			if !ok || name == "" || typ == "" {
				return fmt.Errorf("expected --field name:type, got %q", f)
			}
			mt.Fields = append(mt.Fields, iot.MessageField{Name: name, Type: typ})
		}

		return a.wait(a.client.AddMessageType(cmd.Context(), mt, nil, nil))
	},
}

var messageTypesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a message type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.DeleteMessageType(cmd.Context(), args[0], nil, nil))
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage devices",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.GetDevices(cmd.Context(), nil, nil))
	},
}

var devicesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		deviceType, _ := cmd.Flags().GetString("device-type")
		return a.wait(a.client.AddDevice(cmd.Context(), args[0], deviceType, nil, nil))
	},
}

var devicesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.wait(a.client.DeleteDevice(cmd.Context(), args[0], nil, nil))
	},
}

func init() {
	deviceTypesCmd.AddCommand(deviceTypesListCmd, deviceTypesAddCmd, deviceTypesDeleteCmd)

	messageTypesAddCmd.Flags().String("file", "", "message type document (inline, @file or - for stdin)")
	messageTypesAddCmd.Flags().String("device-type", "", "device type ID")
	messageTypesAddCmd.Flags().String("direction", "", "fromDevice, toDevice or bidirectional")
	messageTypesAddCmd.Flags().StringArray("field", nil, "field as name:type (repeatable, in order)")
	messageTypesCmd.AddCommand(messageTypesListCmd, messageTypesAddCmd, messageTypesDeleteCmd)

	devicesAddCmd.Flags().String("device-type", "", "device type ID")
	_ = devicesAddCmd.MarkFlagRequired("device-type")
	devicesCmd.AddCommand(devicesListCmd, devicesAddCmd, devicesDeleteCmd)

	rootCmd.AddCommand(dataTypesCmd, deviceTypesCmd, messageTypesCmd, devicesCmd)
}
