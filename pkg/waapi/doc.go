// Package waapi is a client for the WhatsApp messaging platform REST API.
//
// A Client wraps one API key and base URL and exposes a façade per
// resource:
//
//	c, err := waapi.New(waapi.Config{APIKey: key})
//	if err != nil {
//		return err
//	}
//	res, err := c.Messages.SendText(ctx, sessionID, "+15551234567", "hello")
//
// Every call goes through a single dispatcher that authenticates the
// request, retries transport failures and 429 responses with backoff, and
// turns any other non-2xx response into an *Error tagged with a Kind.
// Successful calls return the decoded JSON object as a Result.
//
// Webhook deliveries can be checked with VerifySignature and decoded with
// ParseWebhookEvent.
package waapi
