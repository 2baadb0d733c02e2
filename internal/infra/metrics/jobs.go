package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		jobApplicationsTotal,
		jobStatusRefreshedTotal,
		jobListRequestsTotal,
	)
}

var (
	jobApplicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_applications_total",
			Help: "Job application attempts by result.",
		},
		[]string{"result"}, // 'created', 'duplicate', 'not_found', 'failed'
	)

	jobStatusRefreshedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "job_status_refreshed_total",
			Help: "Total number of listings whose status badge changed during refresh.",
		},
	)

	jobListRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_list_requests_total",
			Help: "Listing queries by filter mode.",
		},
		[]string{"mode"}, // 'client', 'remote'
	)
)

func IncJobApplication(result string) {
	jobApplicationsTotal.WithLabelValues(norm(result)).Inc()
}

func AddJobStatusRefreshed(n int64) {
	jobStatusRefreshedTotal.Add(float64(n))
}

func IncJobList(mode string) {
	jobListRequestsTotal.WithLabelValues(norm(mode)).Inc()
}
