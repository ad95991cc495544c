package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequests           *prometheus.CounterVec
	ProfilesDeleted        prometheus.Counter
	CascadeRowsDeleted     *prometheus.CounterVec
	ImageUploads           *prometheus.CounterVec
	StorageCleanupFailures prometheus.Counter
	NotificationsSent      *prometheus.CounterVec
}

// New creates and registers all metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "remindly_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "status"}),
		ProfilesDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "remindly_profiles_deleted_total",
			Help: "Profiles removed together with their dependent rows",
		}),
		CascadeRowsDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "remindly_cascade_rows_deleted_total",
			Help: "Dependent rows removed by profile deletion",
		}, []string{"kind"}),
		ImageUploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "remindly_profile_image_uploads_total",
			Help: "Profile image uploads by result",
		}, []string{"result"}),
		StorageCleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "remindly_storage_cleanup_failures_total",
			Help: "Object store deletes that failed and left a blob behind",
		}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "remindly_notifications_total",
			Help: "Outbound notifications by channel and result",
		}, []string{"channel", "result"}),
	}
}

func (m *Metrics) ProfileDeleted(reminders, favourites int64) {
	if m == nil {
		return
	}
	m.ProfilesDeleted.Inc()
	m.CascadeRowsDeleted.WithLabelValues("reminders").Add(float64(reminders))
	m.CascadeRowsDeleted.WithLabelValues("favourites").Add(float64(favourites))
}

func (m *Metrics) ImageUploaded(ok bool) {
	if m == nil {
		return
	}
	m.ImageUploads.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) StorageCleanupFailed() {
	if m == nil {
		return
	}
	m.StorageCleanupFailures.Inc()
}

func (m *Metrics) NotificationSent(channel string, ok bool) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Middleware counts requests by chi route pattern so ids do not explode label cardinality
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}
