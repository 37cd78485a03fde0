package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ImportRows counts per-row import outcomes, labeled by target entity and
// outcome (imported/skipped/failed).
var ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "akdemia",
	Subsystem: "importer",
	Name:      "rows_total",
	Help:      "Spreadsheet import row outcomes.",
}, []string{"target", "outcome"})

// ImportSessions counts import sessions by terminal state.
var ImportSessions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "akdemia",
	Subsystem: "importer",
	Name:      "sessions_total",
	Help:      "Import sessions by terminal state (completed/cancelled/expired).",
}, []string{"state"})
