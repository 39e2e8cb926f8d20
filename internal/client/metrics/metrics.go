// Package metrics exports upload telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "gophupload"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// PrometheusObserver records upload durations, uploaded bytes, failures and
// refused drops. A nil observer records nothing.
type PrometheusObserver struct {
	uploadDuration *prometheus.HistogramVec
	uploadBytes    *prometheus.CounterVec
	uploadFailures *prometheus.CounterVec
	rejections     *prometheus.CounterVec
}

// NewPrometheusObserver registers the upload metrics with reg, or with the
// default registerer when reg is nil. Metrics registered earlier under the
// same names are reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Latency of single file uploads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "outcome"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative size of successfully uploaded files.",
		}, []string{"kind"}),
		uploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_failures_total",
			Help:      "Count of failed file uploads.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Count of refused drops by error code.",
		}, []string{"code"}),
	}

	var err error
	if o.uploadDuration, err = register(reg, o.uploadDuration); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	if o.uploadFailures, err = register(reg, o.uploadFailures); err != nil {
		return nil, err
	}
	if o.rejections, err = register(reg, o.rejections); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register upload metric: %w", err)
	}
	return c, nil
}

// RecordUpload tracks one finished upload.
func (o *PrometheusObserver) RecordUpload(kind models.ResourceKind, duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	o.uploadDuration.WithLabelValues(string(kind), outcome).Observe(duration.Seconds())
	if err != nil {
		o.uploadFailures.WithLabelValues(string(kind)).Inc()
		return
	}
	o.uploadBytes.WithLabelValues(string(kind)).Add(float64(sizeBytes))
}

// RecordRejection counts one refused drop.
func (o *PrometheusObserver) RecordRejection(code validation.ErrorCode) {
	if o == nil {
		return
	}
	o.rejections.WithLabelValues(string(code)).Inc()
}
