/*
 * Copyright (c) 2019 OysterPack, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package maestro

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics exposes per-app status and readiness as Prometheus gauges. This is
// a supplemented feature (not in the original program): every registered
// app gets one time series per gauge, labeled by app name.
//
// Grounded on pkg/fxapp/metrics.go's PrometheusHTTPServerRunner, with the
// fx.Lifecycle hook replaced by plain Start/Stop methods since this module
// carries no DI container.
type Metrics struct {
	registry *prometheus.Registry
	status   *prometheus.GaugeVec
	ready    *prometheus.GaugeVec
}

// NewMetrics constructs a Metrics collector registered against a private
// prometheus.Registry (not the global DefaultRegisterer).
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "maestro_app_status",
		Help: "current app status: 0=INIT 1=RUNNING 2=STOPPING 3=STOPPED",
	}, []string{"app"})

	ready := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "maestro_app_ready",
		Help: "1 if the app's readiness probe has reported ready, else 0",
	}, []string{"app"})

	registry.MustRegister(status, ready)

	return &Metrics{registry: registry, status: status, ready: ready}
}

// Observe updates every gauge from the current state of each app in the
// registry. Called once per supervisor tick.
func (m *Metrics) Observe(apps []*App) {
	for _, app := range apps {
		m.status.WithLabelValues(app.Name()).Set(float64(app.Status()))
		readyVal := 0.0
		if app.Ready() {
			readyVal = 1.0
		}
		m.ready.WithLabelValues(app.Name()).Set(readyVal)
	}
}

// MetricsServerOpts configures the optional metrics HTTP server.
type MetricsServerOpts struct {
	// Port the server listens on.
	Port uint
	// Endpoint defaults to /metrics.
	Endpoint string
}

func (o MetricsServerOpts) port() uint {
	if o.Port == 0 {
		return 9090
	}
	return o.Port
}

func (o MetricsServerOpts) endpoint() string {
	if o.Endpoint == "" {
		return "/metrics"
	}
	return o.Endpoint
}

// MetricsServer serves the Metrics registry over HTTP.
type MetricsServer struct {
	server *http.Server
	logger *zerolog.Logger
}

// NewMetricsServer builds (but does not start) an HTTP server exposing m's
// registry at opts.endpoint().
func NewMetricsServer(m *Metrics, opts MetricsServerOpts, logger *zerolog.Logger) *MetricsServer {
	handler := http.NewServeMux()
	handler.Handle(opts.endpoint(), promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 5,
	}))

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", opts.port()),
		Handler:        handler,
		ReadTimeout:    1 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxHeaderBytes: 1024,
	}

	return &MetricsServer{server: server, logger: logger}
}

// Start runs the server in a background goroutine. Listen errors other than
// a clean Shutdown are logged, not returned, since the metrics server is
// never load-bearing for the supervisor's own operation.
func (s *MetricsServer) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("metrics server exited with an error")
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *MetricsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
