package ledger

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
)

const (
	processTransactionDurationMetricName = "Ledger/ProcessTransactionDuration"
	airdropEventName                     = "LedgerAirdrop"
)

var (
	transactionsProcessedCounter = metrics.Register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipsea",
			Subsystem: "ledger",
			Name:      "transactions_processed_total",
			Help:      "Number of transactions processed by the bank, by result",
		},
		[]string{"result"},
	)).(*prometheus.CounterVec)

	instructionFailuresCounter = metrics.Register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipsea",
			Subsystem: "ledger",
			Name:      "instruction_failures_total",
			Help:      "Number of failed instructions, by program and error",
		},
		[]string{"program", "error"},
	)).(*prometheus.CounterVec)
)
