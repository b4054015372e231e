// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"net/http"
)

// Events reads stored audit events. *audit.Store implements it.
type Events interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	Count(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Events Events
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs an Audit Log feature handler. events may be nil
// when no database is configured; the page then says nothing is stored.
func NewHandler(events Events, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}
