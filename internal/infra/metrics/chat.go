package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		conversationsActive,
		chatMessagesTotal,
		chatRateLimitedTotal,
		conversationsEvictedTotal,
	)
}

var (
	conversationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Conversations currently held in memory.",
		},
	)

	chatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat submissions by result.",
		},
		[]string{"result"}, // 'accepted', 'empty', 'awaiting', 'busy'
	)

	chatRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_triggered_total",
			Help: "Total number of times chat submissions were rate-limited.",
		},
	)

	conversationsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_evicted_total",
			Help: "Conversations dropped after being idle too long.",
		},
	)
)

func SetConversationsActive(n int) {
	conversationsActive.Set(float64(n))
}

func IncChatMessage(result string) {
	chatMessagesTotal.WithLabelValues(norm(result)).Inc()
}

func IncChatRateLimited() {
	chatRateLimitedTotal.Inc()
}

func AddConversationsEvicted(n int) {
	conversationsEvictedTotal.Add(float64(n))
}
