package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
	// остальные типы сервер -> клиент совпадают с domain.Event* (light_received, ...)
)
