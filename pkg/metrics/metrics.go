package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gatepass"

// Metrics groups every collector the services record. All methods are safe on
// a nil receiver so tests and tools can run without a registry.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	VisitorsRegistered  prometheus.Counter
	VisitorsCheckedOut  prometheus.Counter
	CheckoutRejections  *prometheus.CounterVec
	GroupIDCollisions   prometheus.Counter
	OTPSent             prometheus.Counter
	OTPVerifications    *prometheus.CounterVec
	SMSDeliveries       *prometheus.CounterVec
	KafkaMessages       *prometheus.CounterVec
	KafkaHandleDuration *prometheus.HistogramVec
	EventPublishFailure *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		VisitorsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visitors_registered_total",
			Help:      "Visitor groups registered",
		}),
		VisitorsCheckedOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visitors_checked_out_total",
			Help:      "Visitor groups checked out",
		}),
		CheckoutRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejections_total",
			Help:      "Checkout attempts that matched no checked-in group, by reason",
		}, []string{"reason"}),
		GroupIDCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_id_collisions_total",
			Help:      "Generated group ids rejected because they were already taken",
		}),
		OTPSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_sent_total",
			Help:      "One-time codes issued",
		}),
		OTPVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "One-time code verification attempts by result",
		}, []string{"result"}),
		SMSDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_deliveries_total",
			Help:      "SMS deliveries by gateway and result",
		}, []string{"gateway", "result"}),
		KafkaMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction, topic and result",
		}, []string{"direction", "topic", "result"}),
		KafkaHandleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Time spent publishing or handling a Kafka message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
		EventPublishFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Domain events that could not be published, by event type",
		}, []string{"event_type"}),
	}
}

// Handler exposes the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) VisitorRegistered() {
	if m == nil {
		return
	}
	m.VisitorsRegistered.Inc()
}

func (m *Metrics) VisitorCheckedOut() {
	if m == nil {
		return
	}
	m.VisitorsCheckedOut.Inc()
}

func (m *Metrics) CheckoutRejected(reason string) {
	if m == nil {
		return
	}
	m.CheckoutRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) GroupIDCollision() {
	if m == nil {
		return
	}
	m.GroupIDCollisions.Inc()
}

func (m *Metrics) OTPIssued() {
	if m == nil {
		return
	}
	m.OTPSent.Inc()
}

func (m *Metrics) OTPVerification(result string) {
	if m == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) SMSDelivery(gateway string, err error) {
	if m == nil {
		return
	}
	m.SMSDeliveries.WithLabelValues(gateway, result(err)).Inc()
}

func (m *Metrics) KafkaMessage(direction, topic string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.KafkaMessages.WithLabelValues(direction, topic, result(err)).Inc()
	m.KafkaHandleDuration.WithLabelValues(direction, topic).Observe(elapsed.Seconds())
}

func (m *Metrics) EventPublishFailed(eventType string) {
	if m == nil {
		return
	}
	m.EventPublishFailure.WithLabelValues(eventType).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
