// Package metrics registers the prometheus counters and gauges the
// orchestrator and input manager increment alongside their rlog calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "frames_rendered_total",
		Help:      "Number of frames flushed to a sink.",
	})
	CellsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "cells_emitted_total",
		Help:      "Number of terminal cells written across all flushed frames.",
	})
	DirtyIntervalsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "dirty_intervals_merged_total",
		Help:      "Number of dirty-rectangle intervals coalesced during a flush.",
	})
	ObjectsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "objects_expired_total",
		Help:      "Number of drawables removed by the lifetime checker.",
	})
	InputEventsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "input_events_dispatched_total",
		Help:      "Number of classified input messages delivered to at least one subscriber.",
	})
	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vitrine",
		Name:      "input_subscribers_dropped_total",
		Help:      "Number of input messages dropped because a subscriber's channel was full.",
	})
	ActiveScreens = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vitrine",
		Name:      "active_screens",
		Help:      "Number of screens currently registered with the orchestrator.",
	})
	RegisteredDrawables = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vitrine",
		Name:      "registered_drawables",
		Help:      "Number of drawable handles currently registered across all screens.",
	})
)

// RecordExpired increments ObjectsExpired by count if positive.
func RecordExpired(count int) {
	if count > 0 {
		ObjectsExpired.Add(float64(count))
	}
}

// RecordCellsEmitted increments CellsEmitted by count if positive.
func RecordCellsEmitted(count int) {
	if count > 0 {
		CellsEmitted.Add(float64(count))
	}
}

// RecordDirtyIntervalsMerged increments DirtyIntervalsMerged by count if positive.
func RecordDirtyIntervalsMerged(count int) {
	if count > 0 {
		DirtyIntervalsMerged.Add(float64(count))
	}
}
