package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Cart state changes by operation.",
		},
		[]string{"operation"},
	)

	couponApplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_coupon_applications_total",
			Help: "Coupon apply attempts by result.",
		},
		[]string{"result"},
	)

	couponAutoClearedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_coupon_auto_cleared_total",
			Help: "Coupons dropped because the cart no longer had an eligible item.",
		},
	)

	storageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_storage_failures_total",
			Help: "Failed reads, writes and decodes of persisted cart state.",
		},
		[]string{"operation"},
	)
)

func RecordCartMutation(operation string) {
	cartMutationsTotal.WithLabelValues(operation).Inc()
}

func RecordCouponApplication(result string) {
	couponApplicationsTotal.WithLabelValues(result).Inc()
}

func RecordCouponAutoCleared() {
	couponAutoClearedTotal.Inc()
}

func RecordStorageFailure(operation string) {
	storageFailuresTotal.WithLabelValues(operation).Inc()
}
