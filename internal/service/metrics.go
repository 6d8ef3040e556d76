package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tab_sessions_created_total",
			Help: "Sessions created by matchmaking or bot games",
		},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tab_sessions_active",
			Help: "Sessions currently registered, waiting or playing",
		},
	)
	MovesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tab_moves_total",
			Help: "Moves applied to any board",
		},
	)
	CapturesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tab_captures_total",
			Help: "Moves that removed an opposing piece",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tab_games_finished_total",
			Help: "Finished games by reason",
		},
		[]string{"reason"},
	)
	PushDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tab_push_dropped_total",
			Help: "Subscribers dropped because their buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(MovesTotal)
	prometheus.MustRegister(CapturesTotal)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(PushDropped)
}
