// Package health reports whether the search service can answer requests.
//
// A Checker reports one component: the cache database, the search engine
// configuration, process memory. An Aggregator runs checkers concurrently and
// folds their results into one Status, which the HTTP handlers expose as
// liveness, readiness and detailed probes.
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewPingChecker("cache", sqliteCache, nil))
//	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := health.OverallStatus(results)
package health
