package utils

type contextKey string

// Request-scoped values placed on the context by handlers.
const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
	CancelFuncKey contextKey = "cancel_func"
	UserIDKey     contextKey = "user_id"
)
