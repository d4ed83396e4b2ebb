package editor

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    metricRemoteEvents = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "editor_remote_events_total",
        Help: "Change feed events received, by kind",
    }, []string{"kind"})

    metricEchoesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_echoes_suppressed_total",
        Help: "Remote updates discarded inside the recency window",
    })

    metricMalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_malformed_events_total",
        Help: "Change feed events dropped as malformed",
    })

    metricReloads = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_file_list_reloads_total",
        Help: "File list snapshots applied",
    })

    metricLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_file_list_load_errors_total",
        Help: "File list loads that failed and kept the previous snapshot",
    })

    metricWriteBacks = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_writebacks_total",
        Help: "Debounced buffer write-backs persisted",
    })

    metricWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
        Name: "editor_writeback_errors_total",
        Help: "Buffer or language write-backs that failed",
    })

    metricRunSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
        Name:    "editor_run_seconds",
        Help:    "Execution dispatch latency",
        Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
    })
)
