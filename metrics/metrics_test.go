package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentLabelsByTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Instrument)
	r.HandleFunc("/api/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/documents/{id}", "404"))
	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/documents/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/documents/{id}", "404"))
	assert.Equal(t, 3.0, after-before)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestObservers(t *testing.T) {
	ok := testutil.ToFloat64(aiCallsTotal.WithLabelValues("audit", "ok"))
	failed := testutil.ToFloat64(aiCallsTotal.WithLabelValues("audit", "error"))
	ObserveAICall("audit", time.Second, nil)
	ObserveAICall("audit", time.Second, errors.New("timeout"))
	assert.Equal(t, ok+1, testutil.ToFloat64(aiCallsTotal.WithLabelValues("audit", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(aiCallsTotal.WithLabelValues("audit", "error")))

	published := testutil.ToFloat64(documentTransitions.WithLabelValues("published"))
	ObserveTransition("published")
	assert.Equal(t, published+1, testutil.ToFloat64(documentTransitions.WithLabelValues("published")))

	assert.NotPanics(t, func() { Init(); Init() })
}
