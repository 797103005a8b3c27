package ws

const (
	MessageReceived = "message.received"
	MessageHistory  = "message.history"

	ErrorEvent          = "error"
	AuthenticationError = "error.auth"
	SendFailed          = "error.send"
)
