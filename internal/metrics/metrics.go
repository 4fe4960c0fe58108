// Package metrics регистрирует счётчики Prometheus для постбэков и рассылок.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostbacksTotal счётчик принятых постбэков по виду события и исходу.
	PostbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funnelbot_postbacks_total",
		Help: "Processed affiliate postbacks by event kind and outcome.",
	}, []string{"event", "outcome"})

	// DepositsAccumulated сумма депозитов, принятая через постбэки.
	DepositsAccumulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnelbot_deposits_accumulated_total",
		Help: "Total deposit amount accumulated from postbacks.",
	})

	// BroadcastsSent счётчик отправленных сообщений рассылки по исходу.
	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funnelbot_broadcast_messages_total",
		Help: "Broadcast messages sent by outcome.",
	}, []string{"outcome"})
)
