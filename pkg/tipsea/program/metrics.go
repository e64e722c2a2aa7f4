package program

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
)

const (
	tipIssuedEventName    = "TipseaTipIssued"
	tipRedeemedEventName  = "TipseaTipRedeemed"
	fundWithdrawEventName = "TipseaFundWithdraw"
)

var (
	instructionsCounter = metrics.Register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipsea",
			Subsystem: "program",
			Name:      "instructions_total",
			Help:      "Number of tipsea instructions processed, by instruction and result",
		},
		[]string{"instruction", "result"},
	)).(*prometheus.CounterVec)
)

func recordInstructionResult(instructionType tipsea.InstructionType, err error) {
	result := "success"
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case solana.CustomError:
			result = fmt.Sprintf("0x%x", int(cause))
		case solana.InstructionErrorKey:
			result = string(cause)
		default:
			result = "unknown"
		}
	}

	instructionsCounter.WithLabelValues(instructionType.String(), result).Inc()
}
