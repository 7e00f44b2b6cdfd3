package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "basal")
				So(manager.subsystem, ShouldEqual, "bmr")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("calc"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.resets.Inc()

			Convey("Then metrics should carry the namespace and constant labels", func() {
				expected := `
# HELP test_calc_resets_total Total number of session log resets
# TYPE test_calc_resets_total counter
test_calc_resets_total{env="test"} 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_calc_resets_total"), ShouldBeNil)
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When passing empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "basal")
				So(manager.subsystem, ShouldEqual, "bmr")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording computations", func() {
			before := testutil.ToFloat64(globalManager.computations.WithLabelValues("mifflin_st_jeor"))
			RecordComputation("mifflin_st_jeor")
			RecordComputation("mifflin_st_jeor")

			Convey("Then the formula counter should increase", func() {
				after := testutil.ToFloat64(globalManager.computations.WithLabelValues("mifflin_st_jeor"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording validation failures", func() {
			before := testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("weight"))
			RecordValidationFailure("weight")

			Convey("Then the field counter should increase", func() {
				after := testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("weight"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When updating the session log gauge", func() {
			UpdateSessionLogEntries(42)

			Convey("Then the gauge should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.sessionLogEntries), ShouldEqual, 42)
				UpdateSessionLogEntries(0)
				So(testutil.ToFloat64(globalManager.sessionLogEntries), ShouldEqual, 0)
			})
		})

		Convey("When recording resets and evictions", func() {
			resets := testutil.ToFloat64(globalManager.resets)
			evictions := testutil.ToFloat64(globalManager.sessionLogEvictions)
			RecordReset()
			RecordSessionLogEvictions(3)

			Convey("Then the counters should increase", func() {
				So(testutil.ToFloat64(globalManager.resets)-resets, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.sessionLogEvictions)-evictions, ShouldEqual, 3)
			})
		})

		Convey("When recording latency, HTTP and error metrics", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					RecordComputeLatency(0.5)
					RecordRepositoryAppendLatency(0.01)
					RecordHTTPRequest("model-construct", "POST", "200")
					RecordHTTPRequestDuration("model-construct", "POST", "200", 1.5)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("model-construct", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 2.0)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it should expose the service metrics", func() {
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "basal_bmr_session_log_entries")
				So(names, ShouldContain, "basal_bmr_computations_total")
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			before := testutil.ToFloat64(globalManager.computations.WithLabelValues("concurrent"))
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordComputation("concurrent")
						UpdateSessionLogEntries(j)
						RecordHTTPRequest("data", "GET", "200")
					}
					done <- true
				}()
			}
			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then every increment should be counted", func() {
				after := testutil.ToFloat64(globalManager.computations.WithLabelValues("concurrent"))
				So(after-before, ShouldEqual, 1000)
			})
		})
	})
}
