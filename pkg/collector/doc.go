// Package collector implements Prometheus counters, gauges and histograms
// together with a registry that renders them in the text exposition format
// (version 0.0.4).
//
// Every collector keeps one value per label combination. Label maps are keyed
// by a canonical string built from the sorted label names, so the order in
// which a map is built never matters:
//
//	reg := collector.NewRegistry()
//	requests := collector.MustNewCounter(collector.Opts{
//	    Name:       "http_requests_total",
//	    Help:       "The total number of HTTP requests.",
//	    Labels:     []string{"method", "code"},
//	    Registries: []*collector.Registry{reg},
//	})
//	_ = requests.Inc(collector.Labels{"method": "get", "code": "200"})
//	fmt.Print(reg.Report())
//
// Mutators validate all of their input before touching the store, so a
// failed call never leaves a partial write behind.
package collector
