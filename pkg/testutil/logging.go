package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Importing testutil silences logrus unless the test binary runs verbose.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v" || strings.HasPrefix(arg, "-test.v=") && arg != "-test.v=false" {
			return
		}
	}
	logrus.SetOutput(io.Discard)
}
