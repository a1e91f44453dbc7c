package order

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	CartAdds        prometheus.Counter
	CartRemovals    prometheus.Counter
	FavoriteToggles *prometheus.CounterVec
	ThemeToggles    prometheus.Counter
	StoreErrors     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_adds_total",
			Help: "Items added to carts",
		}),
		CartRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_removals_total",
			Help: "Entries removed from carts",
		}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "favorite_toggles_total",
			Help: "Favorite toggles by resulting action",
		}, []string{"action"}),
		ThemeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "theme_toggles_total",
			Help: "Dark mode toggles",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "state_store_errors_total",
			Help: "Failed write-through persists",
		}),
	}

	reg.MustRegister(m.CartAdds, m.CartRemovals, m.FavoriteToggles, m.ThemeToggles, m.StoreErrors)
	return m
}

func (m *Metrics) cartAdded() {
	if m != nil {
		m.CartAdds.Inc()
	}
}

func (m *Metrics) cartRemoved() {
	if m != nil {
		m.CartRemovals.Inc()
	}
}

func (m *Metrics) favoriteToggled(added bool) {
	if m == nil {
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	m.FavoriteToggles.WithLabelValues(action).Inc()
}

func (m *Metrics) themeToggled() {
	if m != nil {
		m.ThemeToggles.Inc()
	}
}

func (m *Metrics) storeFailed() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}
