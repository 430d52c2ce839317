package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns processed, by recognized intent",
		},
		[]string{"intent"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_turn_duration_seconds",
			Help: "Duration of chat turn processing in seconds",
		},
		[]string{"intent"},
	)

	SlotClarificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_slot_clarifications_total",
			Help: "Total number of clarification prompts issued while slot-filling",
		},
		[]string{"pending_action"},
	)

	GenAICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_calls_total",
			Help: "Total number of generative augmentor calls, by outcome",
		},
		[]string{"status"},
	)

	GenAIRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genai_retries_total",
			Help: "Total number of retry attempts against the generative API",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of conversation sessions currently held in the store",
		},
	)
)
