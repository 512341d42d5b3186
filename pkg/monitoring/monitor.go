package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ExamSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_submissions_total",
			Help: "Total number of graded exam submissions",
		},
		[]string{"result"},
	)

	CourseCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "course_completions_total",
			Help: "Total number of enrollments that reached completed state",
		},
	)

	LessonCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_completions_total",
			Help: "Total number of lessons newly marked as completed",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ExamSubmissions)
	prometheus.MustRegister(CourseCompletions)
	prometheus.MustRegister(LessonCompletions)
}

// ObserveSubmission 按是否及格记录一次交卷
func ObserveSubmission(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	ExamSubmissions.WithLabelValues(result).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
