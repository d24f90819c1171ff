package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

func init() {
	utils.PromRegistry().MustRegister(
		receivedTxsCounter,
		invalidTxsCounterVec,
		knownTxsCounter,
		replacedTxsCounter,
		droppedTxsCounterVec,
		pendingTxGauge,
		queuedTxGauge,
	)
}

var (
	receivedTxsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "received",
			Help:      "number of transactions received",
		},
	)

	invalidTxsCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "invalid",
			Help:      "transactions failed validation",
		},
		[]string{"err"},
	)

	knownTxsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "known",
			Help:      "number of known transaction received",
		},
	)

	replacedTxsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "replaced",
			Help:      "number of transactions replaced by a higher priced one",
		},
	)

	droppedTxsCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "dropped",
			Help:      "transactions removed by a state update",
		},
		[]string{"reason"},
	)

	pendingTxGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "pending",
			Help:      "number of executable transactions",
		},
	)

	queuedTxGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hardhat",
			Subsystem: "txPool",
			Name:      "queued",
			Help:      "number of queued non-executable transactions",
		},
	)
)
