// Package cocon implements a resilient client for the Televic CoCon HTTP API.
//
// The CoCon server requires an explicit connect handshake that yields a
// session id, after which clients continuously long-poll the Notification
// endpoint with that id. The client keeps that conversation alive:
//
//   - A supervisor runs the poll loop and the command loop as independent
//     goroutines and fails fast when either dies.
//   - The poll loop drives a reconnect state machine from HTTP status codes:
//     400 means the session is stale and triggers a reconnect plus a full
//     subscription replay, 408 is the normal end of an empty poll cycle.
//   - Connect handshakes and command sends share one retry-with-backoff
//     policy; exhausting it surfaces connection.ErrRetryExhausted.
//   - Outbound commands flow through a bounded queue; a full queue blocks
//     the producer rather than dropping commands.
//
// # Usage
//
//	client := cocon.NewClient(cocon.Options{
//		Host: "10.0.0.5",
//		Handler: func(payload map[string]any) error {
//			fmt.Println("notification:", payload)
//			return nil
//		},
//	})
//	if err := client.Start(); err != nil {
//		return err
//	}
//	defer client.Stop()
//
//	if err := client.Subscribe(ctx, []string{"Room", "Microphone"}, true); err != nil {
//		return err
//	}
//
// Notification payloads are opaque JSON objects; interpreting them belongs
// to the application.
package cocon
