package repositories

import (
	"github.com/prometheus/client_golang/prometheus"

	"smartexpense/internal/utils"
)

// queryObserver times one store call and records its outcome.
type queryObserver struct {
	queryType  string
	repository string
	status     string
	timer      *prometheus.Timer
}

func observeQuery(repository, queryType string) *queryObserver {
	q := &queryObserver{queryType: queryType, repository: repository, status: "success"}
	q.timer = prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(q.queryType, q.repository, q.status).Observe(v)
	}))
	return q
}

func (q *queryObserver) fail() {
	q.status = "error"
	utils.DBQueryErrorsTotal.WithLabelValues(q.queryType, q.repository).Inc()
}

func (q *queryObserver) done() {
	q.timer.ObserveDuration()
}
