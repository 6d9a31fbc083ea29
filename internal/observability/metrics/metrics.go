package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatwatch_snapshots_total",
			Help: "Snapshot uploads received, per source.",
		},
		[]string{"source"},
	)

	OffersMergedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatwatch_offers_merged_total",
			Help: "Offers per merge partition (added/removed/updated/same), per source.",
		},
		[]string{"source", "partition"},
	)

	EmailsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flatwatch_emails_sent_total",
			Help: "Subscriber notification emails sent.",
		},
	)

	EmailsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flatwatch_emails_failed_total",
			Help: "Subscriber notification emails that failed to send.",
		},
	)
)
