package main

import (
	"github.com/hibiken/asynq"

	"library-backend/internal/domains/user/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Security handlers
	failedLogin *job.FailedLoginHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		failedLogin: job.NewFailedLoginHandler(c.Cache, c.LockoutPolicy()),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessFailedLogin, h.failedLogin.ProcessTask)
}
