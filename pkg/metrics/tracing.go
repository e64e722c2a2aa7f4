package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer is a segment of the New Relic transaction carried by a
// context. A nil tracer, returned when the context carries no transaction,
// is safe to use and records nothing.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named after the struct or package and the
// method being traced.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(structOrPackageName + " " + methodName),
	}
}

// AddAttribute attaches a key-value pair to the segment.
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t != nil {
		t.seg.AddAttribute(key, value)
	}
}

// OnError reports a non-nil error against the transaction.
func (t *MethodTracer) OnError(err error) {
	if t != nil && err != nil {
		t.txn.NoticeError(err)
	}
}

func (t *MethodTracer) End() {
	if t != nil {
		t.seg.End()
	}
}
