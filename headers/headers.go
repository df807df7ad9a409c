// Package headers defines HTTP header constants shared across the SDK.
// This is the single source of truth for header names used in API requests/responses.
package headers

const (
	// APIKey carries the account API key on every request.
	APIKey = "X-Api-Key" //nolint:gosec // This is a header name, not a credential

	// APIVersion pins the wire protocol version the client speaks.
	APIVersion = "Anthropic-Version"

	// RequestID is the header for request correlation. Clients may supply it;
	// the SDK generates one when absent.
	RequestID = "X-Request-Id"
)
