package constants

type ContextKey string

const (
	PoolKey        ContextKey = "pool"
	TxKey          ContextKey = "tx"
	LoggerKey      ContextKey = "logger"
	ParamsKey      ContextKey = "params"
	WorkspaceIDKey ContextKey = "workspaceID"
	UserIDKey      ContextKey = "userID"
	RequestIDKey   ContextKey = "requestID"
)
