// Package metrics counts token lifecycle events for prometheus
package metrics

import (
	"context"
	"net/http"

	"github.com/eisenwinter/extrxx/events"
	"github.com/eisenwinter/extrxx/events/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "extrxx"

// Collector holds all counters, one instance per registry
type Collector struct {
	registry prometheus.Gatherer

	codesIssued       prometheus.Counter
	codesExchanged    prometheus.Counter
	codeRacesLost     prometheus.Counter
	accessRefreshed   prometheus.Counter
	recordsRevoked    *prometheus.CounterVec
	codesPurged       prometheus.Counter
	tokenRecordsSwept prometheus.Counter
}

// New creates the counters and registers them with reg, registration
// failures are logged and the counters keep working unexported
func New(log *zap.Logger, reg *prometheus.Registry) *Collector {
	c := &Collector{
		registry: reg,
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_codes_issued_total",
			Help:      "Total number of authorization codes issued.",
		}),
		codesExchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_codes_exchanged_total",
			Help:      "Total number of authorization codes exchanged for a token pair.",
		}),
		codeRacesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_code_races_lost_total",
			Help:      "Total number of exchanges that lost the race for a code.",
		}),
		accessRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_tokens_refreshed_total",
			Help:      "Total number of access tokens minted by refresh.",
		}),
		recordsRevoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_records_revoked_total",
			Help:      "Total number of revoked token records.",
		}, []string{"scope"}),
		codesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_codes_purged_total",
			Help:      "Total number of authorization codes removed by the sweep.",
		}),
		tokenRecordsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_records_purged_total",
			Help:      "Total number of token records removed by the sweep.",
		}),
	}
	for _, col := range []prometheus.Collector{
		c.codesIssued,
		c.codesExchanged,
		c.codeRacesLost,
		c.accessRefreshed,
		c.recordsRevoked,
		c.codesPurged,
		c.tokenRecordsSwept,
	} {
		if err := reg.Register(col); err != nil {
			log.Warn("Failed to register metric", zap.Error(err))
		}
	}
	return c
}

// Handler serves the registry in the exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Listeners returns the event listeners feeding the counters
func (c *Collector) Listeners() []events.EventListener {
	return []events.EventListener{
		&counting{name: event.AuthorizationCodeIssuedEvent, inc: func(events.Event) {
			c.codesIssued.Inc()
		}},
		&counting{name: event.AuthorizationCodeExchangedEvent, inc: func(events.Event) {
			c.codesExchanged.Inc()
		}},
		&counting{name: event.AuthorizationCodeRaceLostEvent, inc: func(events.Event) {
			c.codeRacesLost.Inc()
		}},
		&counting{name: event.AccessTokenRefreshedEvent, inc: func(events.Event) {
			c.accessRefreshed.Inc()
		}},
		&counting{name: event.TokenRecordRevokedEvent, inc: func(events.Event) {
			c.recordsRevoked.WithLabelValues("one").Inc()
		}},
		&counting{name: event.TokenRecordsRevokedForUserEvent, inc: func(ev events.Event) {
			e := ev.(*event.TokenRecordsRevokedForUser)
			c.recordsRevoked.WithLabelValues("user").Add(float64(e.Revoked))
		}},
		&counting{name: event.RecordsPurgedEvent, inc: func(ev events.Event) {
			e := ev.(*event.RecordsPurged)
			c.codesPurged.Add(float64(e.Codes))
			c.tokenRecordsSwept.Add(float64(e.TokenRecords))
		}},
	}
}

type counting struct {
	name events.EventName
	inc  func(events.Event)
}

func (l *counting) ForEvent() events.EventName {
	return l.name
}

func (l *counting) Handle(_ context.Context, ev events.Event) error {
	l.inc(ev)
	return nil
}
