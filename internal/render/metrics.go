package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "walletmap",
	Subsystem: "render",
	Name:      "cache_lookups_total",
	Help:      "Memoized hierarchy and layout lookups by step and result.",
}, []string{"step", "result"})
