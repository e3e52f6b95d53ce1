package iot_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	iot "github.com/tj-smith47/iot-go"
)

func ExampleNewClient() {
	client, err := iot.NewClient(
		iot.WithServiceURLs(
			"https://iotrdms.example.com/com.sap.iotservices.dms/api",
			"https://iotmms.example.com/com.sap.iotservices.mms/v1/api/http",
		),
		iot.WithTimeout(10*time.Second),
	)
	if err != nil {
		log.Fatal(err)
	}

	res := client.GetDevices(context.Background(), nil, nil).Wait()
	devices, err := iot.DecodeResult[[]iot.Device](res)
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range devices {
		fmt.Printf("Device: %s (%s)\n", d.Name, d.ID)
	}
}

func ExampleClient_GetDevices() {
	client, _ := iot.NewClient()
	ctx := context.Background()

	client.GetDevices(ctx,
		func(body json.RawMessage) {
			if body == nil {
				return // the call failed and fail has already run
			}
			devices, _ := iot.Decode[[]iot.Device](body)
			fmt.Printf("%d devices\n", len(devices))
		},
		func(p *iot.FailurePayload) {
			for _, msg := range iot.ErrorMessages(p) {
				fmt.Println("failed:", msg)
			}
		},
	)
}

func ExampleClient_Authenticate() {
	client, _ := iot.NewClient()
	ctx := context.Background()

	client.Authenticate(ctx, "client-id", "client-secret", "", func(t *iot.TokenResponse) {
		client.SetToken(t.AccessToken)
	}, nil).Wait()

	client.PostData(ctx, "device-id", iot.ModeSync, "message-type-id",
		[]map[string]any{{"timestamp": time.Now().Unix(), "speed": 42}},
		nil, nil,
	).Wait()
}

func ExampleClient_AddMessageType() {
	client, _ := iot.NewClient()

	// Positions are assigned from the slice order.
	client.AddMessageType(context.Background(), &iot.MessageType{
		Name:       "speed",
		DeviceType: "device-type-id",
		Direction:  iot.DirectionFromDevice,
		Fields: []iot.MessageField{
			{Name: "timestamp", Type: "date"},
			{Name: "speed", Type: "double"},
		},
	}, nil, nil)
}

func ExampleWithNotifier() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	client, _ := iot.NewClient(iot.WithNotifier(iot.SlogNotifier{Logger: logger}))
	_ = client
}

func ExampleErrorMessages() {
	fmt.Println(iot.ErrorMessages(&iot.FailurePayload{
		StatusCode: 400,
		Errors:     []iot.ErrorDetail{{Description: "x"}, {Description: "y"}},
	}))
	fmt.Println(iot.ErrorMessages(&iot.FailurePayload{StatusCode: 500, ResponseText: "boom"}))
	fmt.Println(iot.ErrorMessages(&iot.FailurePayload{}))
	// Output:
	// [x y]
	// [boom]
	// [Unknown error!]
}
