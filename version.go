package anthropic

// Version is the published SDK version.
// 0.4.0: Breaking - scoped streaming moves to MessagesClient.StreamWith; Close
// is now guaranteed on panic as well as early return.
// 0.3.0: Add ToolBuilder with schema derivation from Go struct types.
// 0.2.0: Add lazy Text iterator and FinalText eager drain on MessageStream.
const Version = "0.4.0"
