// Package iot provides a Go client library for the IoT services REST API: the
// device management service (DMS) and the message management service (MMS).
//
// # Creating a Client
//
// Every client owns its pair of base URLs. Without options it talks to the
// trial environment:
//
//	client, err := iot.NewClient(
//	    iot.WithServiceURLs(
//	        "https://iotrdms.example.com/com.sap.iotservices.dms/api",
//	        "https://iotmms.example.com/com.sap.iotservices.mms/v1/api/http",
//	    ),
//	)
//
// A trailing slash is appended to each base URL when missing. The pair can be
// changed later with SetServiceURL and read with DMSURL, MMSURL or Endpoints.
//
// # Calls and Continuations
//
// Every operation returns immediately and reports its outcome to two
// continuations:
//
//	client.GetDevices(ctx,
//	    func(body json.RawMessage) {
//	        // success: body is the response; after a failure: body is nil
//	    },
//	    func(p *iot.FailurePayload) {
//	        // failure
//	    },
//	)
//
// On success done receives the response body. On failure fail receives the
// payload and done is then called once more with a nil body, so completion
// logic runs regardless of the outcome. When fail is nil the failure is
// displayed through the client's Notifier instead (see WithNotifier).
//
// Each operation also returns a *Call. Wait blocks until the continuations
// have run and returns the Result:
//
//	res := client.GetDevices(ctx, nil, nil).Wait()
//	devices, err := iot.DecodeResult[[]iot.Device](res)
//
// # Request Options
//
// Per-call options are applied after the client's defaults and win over them:
//
//	client.GetConfig(ctx, done, fail,
//	    iot.WithBearerToken(token),
//	    iot.WithHeader("X-Tenant", "acme"),
//	)
//
// # Authentication
//
// Authenticate performs the OAuth client-credentials exchange with HTTP Basic
// Auth. Its done continuation fires only on success:
//
//	client.Authenticate(ctx, clientID, secret, "scope", func(t *iot.TokenResponse) {
//	    client.SetToken(t.AccessToken)
//	}, nil)
//
// # Error Reporting
//
// A failure is displayed as one message per entry of a structured
// {"errors":[{"description":...}]} response, as the raw response text
// otherwise, and as "Unknown error!" when nothing usable was returned.
// Notifier implementations are provided for writers, log/slog and zap.
//
// # API Coverage
//
//   - DMS: data types, device types, message types, devices
//   - MMS: service config, table mapping, device data push/pull, push to device
//   - OAuth: client-credentials token exchange
package iot
