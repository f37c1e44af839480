package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoform_reports_total",
		Help: "Raw location reports folded into an atlas, by result.",
	}, []string{"result", "reason"})
	ValidationProblemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoform_validation_problems_total",
		Help: "Problems found while validating generated forms, by kind.",
	}, []string{"kind"})
	FormRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoform_form_requests_total",
		Help: "Requests made to the form service, by operation and outcome.",
	}, []string{"op", "outcome"})
)

func init() {
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(ValidationProblemsTotal)
	prometheus.MustRegister(FormRequestsTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
