// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placehold_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheResults counts user cache lookups by result (hit or miss).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placehold_cache_results_total",
		Help: "User cache lookups by result",
	}, []string{"result"})

	// SeededUsers counts users created by the startup seeder.
	SeededUsers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placehold_seeded_users_total",
		Help: "Total number of users created by the seeder",
	})
)
