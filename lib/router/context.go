// Package router dispatches wire operation names to their target
// handlers and owns the request/response shapes each operation defines.
package router

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context is the per-request collaborator bundle: a cancellable context,
// a request-scoped logger, and a request id. It is never shared across
// requests.
type Context struct {
	Ctx       context.Context
	Logger    *logrus.Entry
	RequestId string
}

// NewContext builds a per-request Context with a fresh request id attached
// to logger's fields.
func NewContext(ctx context.Context, logger *logrus.Logger) *Context {
	requestId := uuid.New().String()
	return &Context{
		Ctx:       ctx,
		Logger:    logger.WithField("request_id", requestId),
		RequestId: requestId,
	}
}
