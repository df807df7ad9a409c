// Package routes provides API route constants shared between the client
// surface and tests to prevent path mismatches.
package routes

const (
	// Messages creates a message (blocking or streaming).
	Messages = "/messages"

	// MessagesCountTokens counts input tokens without generating.
	MessagesCountTokens = "/messages/count_tokens"

	// Models lists the model catalog.
	Models = "/models"
)
