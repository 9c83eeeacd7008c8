package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_sessions_started_total",
		Help: "Number of project attempts started",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_sessions_completed_total",
		Help: "Number of project attempts completed",
	})

	StepsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_steps_completed_total",
		Help: "Number of project steps completed",
	})

	ProjectsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_projects_generated_total",
		Help: "Number of projects produced by the generator",
	})

	RecommendationsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_recommendations_served_total",
		Help: "Number of recommendation lists served",
	})

	RecommendationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sprint_recommendation_cache_hits_total",
		Help: "Number of recommendation lists served from cache",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sprint_http_requests_total",
		Help: "HTTP requests by method, path pattern and status",
	}, []string{"method", "path", "status"})
)
