package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tictactoe"

const (
	SourceLocal  = "local"
	SourceRemote = "remote"

	ResultWin               = "win"
	ResultLoss              = "loss"
	ResultDraw              = "draw"
	ResultConnectionLost    = "connection_lost"
	ResultProtocolViolation = "protocol_violation"
	ResultCanceled          = "canceled"
)

type Metrics struct {
	Registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	moves            *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		sessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions started after a successful handshake.",
		}, []string{"role"}),
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Accepted moves by origin.",
		}, []string{"source"}),
		sessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Ended sessions by result.",
		}, []string{"result"}),
	}
}

func (that *Metrics) SessionStarted(role string) {
	that.sessionsStarted.WithLabelValues(role).Inc()
}

func (that *Metrics) MoveApplied(source string) {
	that.moves.WithLabelValues(source).Inc()
}

func (that *Metrics) SessionFinished(result string) {
	that.sessionsFinished.WithLabelValues(result).Inc()
}
