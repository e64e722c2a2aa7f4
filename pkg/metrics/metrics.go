package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key for the New Relic application custom
// metrics and events are recorded against.
type NewRelicContextKey struct{}

// NewContext returns a context carrying the New Relic application. A nil app
// returns the parent context unchanged.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric, in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}

// RecordEvent records a custom event with a name and set of attributes
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	if app := fromContext(ctx); app != nil {
		app.RecordCustomEvent(eventName, attributes)
	}
}

func fromContext(ctx context.Context) *newrelic.Application {
	app, _ := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return app
}
