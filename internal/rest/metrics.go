package rest

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolz_rest_requests_total",
		Help: "HTTP requests issued by the rest client, by method and outcome",
	}, []string{
		"method", // GET|POST
		"result", // ok|encoding_failed|request_failed|unexpected_status|decoding_failed
		"code",   // HTTP status code, 0 when no response arrived
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toolz_rest_request_duration_seconds",
		Help:    "Latency of HTTP round trips issued by the rest client",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

func observeRequest(method string, started time.Time, status int, err error) {
	result := "ok"
	if rerr, ok := err.(*RequestError); ok {
		switch rerr.Kind {
		case EncodingFailed:
			result = "encoding_failed"
		case RequestFailed:
			result = "request_failed"
		case UnexpectedStatus:
			result = "unexpected_status"
		case DecodingFailed:
			result = "decoding_failed"
		}
	}
	requestsTotal.WithLabelValues(method, result, strconv.Itoa(status)).Inc()
	if !started.IsZero() {
		requestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
	}
}
