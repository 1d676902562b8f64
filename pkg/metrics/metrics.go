// Package metrics is a small in-process collector: counters, latency and
// size observations, exported as JSON on the /metrics endpoint.
package metrics

import (
	"sync"
	"time"
)

// keep only the most recent observations per series
const observationWindow = 100

type Collector struct {
	mu        sync.RWMutex
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]float64
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]float64),
	}
}

func (c *Collector) IncrementCounter(name string, labels map[string]string) {
	labelKey := "default"
	for k, v := range labels {
		labelKey = k + ":" + v
		break
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counters[name]; !ok {
		c.counters[name] = make(map[string]int64)
	}
	c.counters[name][labelKey]++
}

func (c *Collector) ObserveLatency(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[name] = trimDurations(append(c.latencies[name], d))
}

func (c *Collector) ObserveSize(name string, size float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[name] = trimFloats(append(c.sizes[name], size))
}

func (c *Collector) Counters() map[string]map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]int64, len(c.counters))
	for name, labels := range c.counters {
		out[name] = make(map[string]int64, len(labels))
		for label, value := range labels {
			out[name][label] = value
		}
	}
	return out
}

// Latencies reports the average latency per series in milliseconds.
func (c *Collector) Latencies() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.latencies))
	for name, durations := range c.latencies {
		if len(durations) == 0 {
			continue
		}
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		out[name] = float64(sum) / float64(len(durations)) / float64(time.Millisecond)
	}
	return out
}

// Sizes reports average and max observed size per series in bytes.
func (c *Collector) Sizes() map[string]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]float64, len(c.sizes))
	for name, observations := range c.sizes {
		if len(observations) == 0 {
			continue
		}
		var sum, max float64
		for _, v := range observations {
			sum += v
			if v > max {
				max = v
			}
		}
		out[name] = map[string]float64{
			"avg_bytes": sum / float64(len(observations)),
			"max_bytes": max,
		}
	}
	return out
}

func trimDurations(s []time.Duration) []time.Duration {
	if len(s) > observationWindow {
		return s[len(s)-observationWindow:]
	}
	return s
}

func trimFloats(s []float64) []float64 {
	if len(s) > observationWindow {
		return s[len(s)-observationWindow:]
	}
	return s
}
