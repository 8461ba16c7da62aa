package input

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/touchmask/internal/device"
)

const latencySamples = 1000

// commandKinds is the number of device.Kind values counted.
const commandKinds = int(device.KindSetClipboard) + 1

// Metrics tracks engine throughput and latency. It is safe for concurrent
// use and implements prometheus.Collector.
type Metrics struct {
	// Event counters
	keyEvents   atomic.Uint64
	mouseEvents atomic.Uint64
	wheelEvents atomic.Uint64
	axisEvents  atomic.Uint64

	suppressedRepeats atomic.Uint64
	wheelDrops        atomic.Uint64
	unbound           atomic.Uint64

	commands [commandKinds]atomic.Uint64

	ticks        atomic.Uint64
	loopRuns     atomic.Uint64
	activeLoops  atomic.Int64
	modeSwitches atomic.Uint64
	bindFailures atomic.Uint64
	macroAborts  atomic.Uint64

	transportErrors atomic.Uint64
	droppedCommands atomic.Uint64

	// Latency ring buffers
	mu             sync.RWMutex
	eventLatencies []time.Duration
	tickLatencies  []time.Duration
	eventIdx       int
	tickIdx        int

	peakEventLatency atomic.Int64
	peakTickLatency  atomic.Int64

	startTime time.Time

	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		eventLatencies: make([]time.Duration, latencySamples),
		tickLatencies:  make([]time.Duration, latencySamples),
		startTime:      time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

func (m *Metrics) add(c *atomic.Uint64) {
	if m.enabled.Load() {
		c.Add(1)
	}
}

func storePeak(peak *atomic.Int64, latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := peak.Load()
		if ns <= current {
			return
		}
		if peak.CompareAndSwap(current, ns) {
			return
		}
	}
}

// RecordKeyEvent records a handled key event with its processing time.
func (m *Metrics) RecordKeyEvent(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.keyEvents.Add(1)
	m.recordEventLatency(latency)
}

// RecordMouseEvent records a handled mouse event with its processing time.
// Wheel detents are counted separately.
func (m *Metrics) RecordMouseEvent(wheel bool, latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	if wheel {
		m.wheelEvents.Add(1)
	} else {
		m.mouseEvents.Add(1)
	}
	m.recordEventLatency(latency)
}

// RecordAxisEvent records a handled gamepad axis event.
func (m *Metrics) RecordAxisEvent(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.axisEvents.Add(1)
	m.recordEventLatency(latency)
}

func (m *Metrics) recordEventLatency(latency time.Duration) {
	storePeak(&m.peakEventLatency, latency)
	m.mu.Lock()
	m.eventLatencies[m.eventIdx] = latency
	m.eventIdx = (m.eventIdx + 1) % latencySamples
	m.mu.Unlock()
}

// RecordTick records one scheduler tick that ran the given number of loops.
func (m *Metrics) RecordTick(loops, active int, latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.ticks.Add(1)
	m.loopRuns.Add(uint64(loops))
	m.activeLoops.Store(int64(active))
	if loops == 0 {
		return
	}
	storePeak(&m.peakTickLatency, latency)
	m.mu.Lock()
	m.tickLatencies[m.tickIdx] = latency
	m.tickIdx = (m.tickIdx + 1) % latencySamples
	m.mu.Unlock()
}

// RecordCommand counts one emitted device command.
func (m *Metrics) RecordCommand(kind device.Kind) {
	if int(kind) < commandKinds {
		m.add(&m.commands[kind])
	}
}

// RecordSuppressedRepeat counts an auto-repeat down that was dropped.
func (m *Metrics) RecordSuppressedRepeat() { m.add(&m.suppressedRepeats) }

// RecordWheelDrop counts a wheel detent dropped by the rate limiter.
func (m *Metrics) RecordWheelDrop() { m.add(&m.wheelDrops) }

// RecordUnbound counts a press with no binding.
func (m *Metrics) RecordUnbound() { m.add(&m.unbound) }

// RecordModeSwitch counts a mode change.
func (m *Metrics) RecordModeSwitch() { m.add(&m.modeSwitches) }

// RecordBindFailure counts a mapping that failed to apply.
func (m *Metrics) RecordBindFailure() { m.add(&m.bindFailures) }

// RecordMacroAbort counts a macro list aborted by a malformed step.
func (m *Metrics) RecordMacroAbort() { m.add(&m.macroAborts) }

// RecordTransportError counts a failed device send.
func (m *Metrics) RecordTransportError() { m.add(&m.transportErrors) }

// RecordDroppedCommand counts a command dropped on a full queue lane.
func (m *Metrics) RecordDroppedCommand() { m.add(&m.droppedCommands) }

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeyEvents         uint64
	MouseEvents       uint64
	WheelEvents       uint64
	AxisEvents        uint64
	SuppressedRepeats uint64
	WheelDrops        uint64
	Unbound           uint64
	Commands          map[string]uint64
	Ticks             uint64
	LoopRuns          uint64
	ActiveLoops       int64
	ModeSwitches      uint64
	BindFailures      uint64
	MacroAborts       uint64
	TransportErrors   uint64
	DroppedCommands   uint64

	AvgEventLatency  time.Duration
	MaxEventLatency  time.Duration
	P99EventLatency  time.Duration
	PeakEventLatency time.Duration

	AvgTickLatency  time.Duration
	P99TickLatency  time.Duration
	PeakTickLatency time.Duration

	EventsPerSecond float64
	Uptime          time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	events := make([]time.Duration, len(m.eventLatencies))
	copy(events, m.eventLatencies)
	ticks := make([]time.Duration, len(m.tickLatencies))
	copy(ticks, m.tickLatencies)
	uptime := time.Since(m.startTime)
	m.mu.RUnlock()

	snap := MetricsSnapshot{
		KeyEvents:         m.keyEvents.Load(),
		MouseEvents:       m.mouseEvents.Load(),
		WheelEvents:       m.wheelEvents.Load(),
		AxisEvents:        m.axisEvents.Load(),
		SuppressedRepeats: m.suppressedRepeats.Load(),
		WheelDrops:        m.wheelDrops.Load(),
		Unbound:           m.unbound.Load(),
		Commands:          make(map[string]uint64, commandKinds),
		Ticks:             m.ticks.Load(),
		LoopRuns:          m.loopRuns.Load(),
		ActiveLoops:       m.activeLoops.Load(),
		ModeSwitches:      m.modeSwitches.Load(),
		BindFailures:      m.bindFailures.Load(),
		MacroAborts:       m.macroAborts.Load(),
		TransportErrors:   m.transportErrors.Load(),
		DroppedCommands:   m.droppedCommands.Load(),
		PeakEventLatency:  time.Duration(m.peakEventLatency.Load()),
		PeakTickLatency:   time.Duration(m.peakTickLatency.Load()),
		Uptime:            uptime,
	}
	for k := range m.commands {
		snap.Commands[device.Kind(k).String()] = m.commands[k].Load()
	}

	if uptime > 0 {
		total := snap.KeyEvents + snap.MouseEvents + snap.WheelEvents + snap.AxisEvents
		snap.EventsPerSecond = float64(total) / uptime.Seconds()
	}

	snap.AvgEventLatency, snap.MaxEventLatency, snap.P99EventLatency = calculateLatencyStats(events)
	snap.AvgTickLatency, _, snap.P99TickLatency = calculateLatencyStats(ticks)

	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	// unused ring slots are zero
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}

	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
		if l > maxLat {
			maxLat = l
		}
	}
	avg = sum / time.Duration(len(valid))

	sort.Slice(valid, func(i, j int) bool { return valid[i] < valid[j] })
	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	p99 = valid[idx]

	return avg, maxLat, p99
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Uint64{
		&m.keyEvents, &m.mouseEvents, &m.wheelEvents, &m.axisEvents,
		&m.suppressedRepeats, &m.wheelDrops, &m.unbound,
		&m.ticks, &m.loopRuns, &m.modeSwitches, &m.bindFailures,
		&m.macroAborts, &m.transportErrors, &m.droppedCommands,
	} {
		c.Store(0)
	}
	for k := range m.commands {
		m.commands[k].Store(0)
	}
	m.activeLoops.Store(0)
	m.peakEventLatency.Store(0)
	m.peakTickLatency.Store(0)

	m.mu.Lock()
	m.eventLatencies = make([]time.Duration, latencySamples)
	m.tickLatencies = make([]time.Duration, latencySamples)
	m.eventIdx = 0
	m.tickIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// HealthStatus represents the current health of input processing.
type HealthStatus struct {
	Healthy          bool
	DroppedCommands  uint64
	TransportErrors  uint64
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck returns the current health status.
func (m *Metrics) HealthCheck(latencyThreshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		DroppedCommands:  m.droppedCommands.Load(),
		TransportErrors:  m.transportErrors.Load(),
		PeakLatency:      time.Duration(m.peakEventLatency.Load()),
		LatencyThreshold: latencyThreshold,
	}

	switch {
	case status.DroppedCommands > 0:
		status.Healthy = false
		status.Message = "dropped commands detected"
	case status.TransportErrors > 0:
		status.Healthy = false
		status.Message = "transport errors detected"
	case status.PeakLatency > latencyThreshold:
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	default:
		status.Message = "healthy"
	}

	return status
}

// Timer helps measure operation duration.
type Timer struct {
	start time.Time
}

// StartTimer starts a timer.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

var (
	descInputEvents = prometheus.NewDesc(
		"touchmask_input_events_total", "Input events handled by the engine.", []string{"kind"}, nil)
	descCommands = prometheus.NewDesc(
		"touchmask_commands_total", "Device commands emitted.", []string{"type"}, nil)
	descTransportErrors = prometheus.NewDesc(
		"touchmask_transport_errors_total", "Device sends that failed.", nil, nil)
	descDroppedCommands = prometheus.NewDesc(
		"touchmask_dropped_commands_total", "Device commands dropped on a full queue lane.", nil, nil)
	descMacroAborts = prometheus.NewDesc(
		"touchmask_macro_aborts_total", "Macro lists aborted by a malformed step.", nil, nil)
	descActiveLoops = prometheus.NewDesc(
		"touchmask_active_loops", "Loop handlers armed at the last tick.", nil, nil)
	descEventLatency = prometheus.NewDesc(
		"touchmask_event_latency_p99_seconds", "p99 handling latency of recent input events.", nil, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descInputEvents
	ch <- descCommands
	ch <- descTransportErrors
	ch <- descDroppedCommands
	ch <- descMacroAborts
	ch <- descActiveLoops
	ch <- descEventLatency
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	snap := m.Snapshot()

	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	counter(descInputEvents, snap.KeyEvents, "key")
	counter(descInputEvents, snap.MouseEvents, "mouse")
	counter(descInputEvents, snap.WheelEvents, "wheel")
	counter(descInputEvents, snap.AxisEvents, "axis")
	for _, kind := range []device.Kind{device.KindTouch, device.KindSwipe, device.KindSendKey, device.KindSetClipboard} {
		counter(descCommands, snap.Commands[kind.String()], kind.String())
	}
	counter(descTransportErrors, snap.TransportErrors)
	counter(descDroppedCommands, snap.DroppedCommands)
	counter(descMacroAborts, snap.MacroAborts)

	ch <- prometheus.MustNewConstMetric(descActiveLoops, prometheus.GaugeValue, float64(snap.ActiveLoops))
	ch <- prometheus.MustNewConstMetric(descEventLatency, prometheus.GaugeValue, snap.P99EventLatency.Seconds())
}
