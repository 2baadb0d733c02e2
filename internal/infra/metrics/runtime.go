package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo, pgPoolConns) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agent_promosi_build_info",
			Help: "Constant 1, labelled with the running version and commit.",
		},
		[]string{"version", "commit"},
	)

	pgPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pg_pool_connections",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'acquired'
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

func SetPGPoolStats(total, idle, acquired int32) {
	pgPoolConns.WithLabelValues("total").Set(float64(total))
	pgPoolConns.WithLabelValues("idle").Set(float64(idle))
	pgPoolConns.WithLabelValues("acquired").Set(float64(acquired))
}
