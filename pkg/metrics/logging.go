package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogForwardingFormatter is a logrus.Formatter that forwards every entry,
// fields included, to New Relic before handing it to the wrapped formatter.
// Entries logged with a context carrying a New Relic transaction are linked
// to that transaction.
type LogForwardingFormatter struct {
	app       *newrelic.Application
	formatter logrus.Formatter
}

// NewLogForwardingFormatter wraps formatter. The app must not be nil.
func NewLogForwardingFormatter(app *newrelic.Application, formatter logrus.Formatter) *LogForwardingFormatter {
	return &LogForwardingFormatter{
		app:       app,
		formatter: formatter,
	}
}

func (f *LogForwardingFormatter) Format(e *logrus.Entry) ([]byte, error) {
	formatted, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}

	logData := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	b := bytes.NewBuffer(bytes.TrimRight(formatted, "\n"))
	if txn != nil {
		txn.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}

	b.WriteString("\n")
	return b.Bytes(), nil
}

// forwardedMessage flattens the entry's fields into the message, since log
// forwarding only carries the message and severity.
func forwardedMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	errString := "<nil>"
	fields := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		if err, ok := v.(error); ok && k == logrus.ErrorKey {
			errString = fmt.Sprintf("%q", err.Error())
			continue
		}
		fields[k] = v
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return e.Message
	}
	return fmt.Sprintf("message=%q, error=%s, data=%s", e.Message, errString, encoded)
}
