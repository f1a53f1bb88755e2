package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.QuestionPublished()
		m.AnswerChecked(true)
		m.LedgerError()
		m.CommandReceived("quote")
		m.ObserveAPI("imagesearch", time.Second)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.QuestionPublished()
	m.QuestionPublished()
	m.AnswerChecked(true)
	m.AnswerChecked(false)
	m.AnswerChecked(false)
	m.CommandReceived("points")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.questionsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("correct")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("incorrect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("points")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.QuestionPublished()

	srv := httptest.NewServer(Routes(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "k9_trivia_questions_published_total 1")
}
