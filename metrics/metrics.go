package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendgraph_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendgraph_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendgraph_users_registered_total",
		Help: "Accounts created.",
	})
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendgraph_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)
	FriendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendgraph_friend_requests_total",
			Help: "Friend request operations by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			UsersRegisteredTotal,
			LoginsTotal,
			FriendRequestsTotal,
		)
	})
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
