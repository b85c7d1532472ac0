package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "commands_total", Help: "Commands handled"},
		[]string{"command"},
	)
	CommandErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "command_errors_total", Help: "Commands that ended in a user-facing error"},
		[]string{"command"},
	)
	DigestsDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "digests_delivered_total", Help: "Scheduled news digests delivered"},
	)
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_requests_total", Help: "Finance provider requests issued"},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal, CommandErrorsTotal, DigestsDeliveredTotal, UpstreamRequestsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
