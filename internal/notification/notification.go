package notification

import (
	"context"
	"log/slog"

	"github.com/enerjios/enerjios/internal/projectrequest"
	"github.com/enerjios/enerjios/internal/quote"
)

// Dispatcher is the seam towards the notification/e-mail system. Delivery
// itself lives outside this service; handlers call the dispatcher after a
// workflow succeeds.
type Dispatcher interface {
	QuoteApproved(ctx context.Context, q *quote.Quote) error
	RequestStatusChanged(ctx context.Context, r *projectrequest.ProjectRequest) error
}

// LogDispatcher records notifications in the application log. It stands in
// for the external mail service in development and tests.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) QuoteApproved(_ context.Context, q *quote.Quote) error {
	slog.Info("notify: quote approved", "quote_id", q.ID, "total", q.Total)
	return nil
}

func (d *LogDispatcher) RequestStatusChanged(_ context.Context, r *projectrequest.ProjectRequest) error {
	slog.Info("notify: request status changed", "request_id", r.ID, "status", r.Status)
	return nil
}
