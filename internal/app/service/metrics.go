package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_events_processed",
	Help: "Number of normalized events processed",
}, []string{"type"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_event_errors",
	Help: "Number of events abandoned because of an error",
}, []string{"type"})

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guildrules_event_duration_sec",
	Help: "Total duration of event processing",
}, []string{"type"})

var ruleMatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_rule_matches",
	Help: "Number of rules that matched an event",
}, []string{"kind"})

var gateRejectCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_gate_rejections",
	Help: "Number of actions suppressed by an active cooldown",
}, []string{"kind"})

var dispatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_dispatch_total",
	Help: "Number of intents executed, by result",
}, []string{"intent", "result"})

var commandOutcomeCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildrules_command_outcomes",
	Help: "Command invocations by final state",
}, []string{"command", "state"})
