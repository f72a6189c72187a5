package duel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiduel",
		Subsystem: "duel",
		Name:      "commands_total",
		Help:      "Duel commands processed, by command and outcome.",
	}, []string{"command", "outcome"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiduel",
		Subsystem: "duel",
		Name:      "rejections_total",
		Help:      "Commands refused by the state machine, by rejection kind.",
	}, []string{"kind"})

	duelsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lexiduel",
		Subsystem: "duel",
		Name:      "completed_total",
		Help:      "Duels that reached the completed state.",
	})
)

func observeCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := KindOf(err); ok {
			outcome = "rejected"
			rejectionsTotal.WithLabelValues(string(kind)).Inc()
		}
	}
	commandsTotal.WithLabelValues(command, outcome).Inc()
}
