/*
Package observability turns the engine's lifecycle hooks into Prometheus metrics.

	m := observability.NewMetrics(prometheus.NewRegistry())
	eng, _ := parley.New(parley.WithLifecycleHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())

Hooks compose with domain.LifecycleHooks.Merge, so metrics can sit next to audit
logging or any other subscriber.
*/
package observability
