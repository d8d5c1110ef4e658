package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/degree-advisor-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	handler := NewMetricsHandler(nil, func() int { return 12 }, map[string]Pinger{"postgres": ok})
	c, w := newJSONContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"catalog_courses":12`)

	handler = NewMetricsHandler(nil, func() int { return 12 }, map[string]Pinger{"redis": down})
	c, w = newJSONContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	handler = NewMetricsHandler(nil, func() int { return 0 }, nil)
	c, w = newJSONContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.SetCatalogSize(7)
	handler := NewMetricsHandler(metrics, nil, nil)

	c, w := newJSONContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "advisor_catalog_courses 7")

	handler = NewMetricsHandler(nil, nil, nil)
	c, w = newJSONContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
