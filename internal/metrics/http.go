package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests gin could not route, keeping path cardinality bounded.
const unmatchedRoute = "unmatched"

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("Number of HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetricsMiddleware records request count, duration and in-flight requests labelled
// with method, route pattern, status code and status class. Paths listed in skipPaths
// (typically the liveness and readiness probes) are not recorded.
func HTTPMetricsMiddleware(
	meterProvider metric.MeterProvider,
	namespace string,
	skipPaths ...string,
) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		method := attribute.String("method", c.Request.Method)

		instruments.inFlight.Add(ctx, 1, metric.WithAttributes(method))
		start := time.Now()

		c.Next()

		elapsed := time.Since(start).Seconds()
		instruments.inFlight.Add(ctx, -1, metric.WithAttributes(method))

		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			method,
			attribute.String("path", routePattern(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(status)),
			attribute.String("status_class", statusClass(status)),
		)
		instruments.requests.Add(ctx, 1, attrs)
		instruments.duration.Record(ctx, elapsed, attrs)
	}
}

func routePattern(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}

// statusClass maps 503 to "5xx".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
