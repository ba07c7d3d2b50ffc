package metrics

import (
	dto "github.com/prometheus/client_model/go"
)

// counterValue returns the value of the counter sample in families matching
// name and labels, and whether it was found.
func counterValue(families []*dto.MetricFamily, name string, labels map[string]string) (float64, bool) {
	m := findMetric(families, name, labels)
	if m == nil || m.GetCounter() == nil {
		return 0, false
	}
	return m.GetCounter().GetValue(), true
}

// gaugeValue returns the value of the gauge sample matching name and labels.
func gaugeValue(families []*dto.MetricFamily, name string, labels map[string]string) (float64, bool) {
	m := findMetric(families, name, labels)
	if m == nil || m.GetGauge() == nil {
		return 0, false
	}
	return m.GetGauge().GetValue(), true
}

func findMetric(families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, lp := range pairs {
		v, ok := want[lp.GetName()]
		if !ok {
			continue
		}
		if v != lp.GetValue() {
			return false
		}
		matched++
	}
	return matched == len(want)
}
