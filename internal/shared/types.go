package shared

// Asynq task types
const (
	TypeProcessFailedLogin = "auth:process_failed_login"
)

// Asynq queues
const (
	QueueAuth    = "auth"
	QueueDefault = "default"
)
