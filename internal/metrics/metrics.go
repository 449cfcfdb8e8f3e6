package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NewsItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "news_items_total", Help: "Distinct news items consumed from the feed"},
	)
	ParseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "news_parse_failures_total", Help: "News items discarded as not actionable"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	OrderFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "order_failures_total", Help: "Order submissions rejected or unacknowledged"},
	)
)

func init() {
	prometheus.MustRegister(NewsItemsTotal, ParseFailuresTotal, OrdersTotal, OrderFailuresTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
