package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/basal/internal/adapters/http/api"
	service "github.com/okian/basal/internal/app"
	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type constructResponse struct {
	Message string         `json:"message"`
	DataOut []model.Result `json:"data_out"`
	Status  string         `json:"status"`
}

type ackResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

type failingDeps struct{}

func (failingDeps) Inputs(context.Context) []model.MetricRecord { return []model.MetricRecord{} }
func (failingDeps) Reset(context.Context)                       {}
func (failingDeps) Construct(context.Context, model.MetricRecord) ([]model.Result, error) {
	return nil, errors.New("store offline")
}

func newMux(opts ...api.ServerOption) (*http.ServeMux, *service.Service) {
	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func getData(mux http.Handler) []model.MetricRecord {
	w := do(mux, http.MethodGet, "/data", "")
	So(w.Code, ShouldEqual, http.StatusOK)
	var records []model.MetricRecord
	So(json.NewDecoder(w.Body).Decode(&records), ShouldBeNil)
	return records
}

const validPayload = `{"weight":"70","height":"175","age":"30","time":"60"}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux()

		Convey("Then health endpoint should expose metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "basal_bmr_session_log_entries")
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
		})

		Convey("And every route should carry a request id", func() {
			w := do(mux, http.MethodGet, "/data", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("And a client request id should be echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/data", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "trace-42")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "trace-42")
		})

		Convey("And wrong methods should not be routed", func() {
			So(do(mux, http.MethodPost, "/data", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/model-construct", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/reset", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		svc := service.New()
		server := api.NewServer(svc, svc)

		Convey("Then registering should panic", func() {
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestGetData(t *testing.T) {
	Convey("Given a fresh server", t, func() {
		mux, _ := newMux()

		Convey("When no records were constructed", func() {
			w := do(mux, http.MethodGet, "/data", "")

			Convey("Then it should return an empty JSON array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestModelConstruct(t *testing.T) {
	Convey("Given a fresh server", t, func() {
		mux, svc := newMux()

		Convey("When posting numeric strings", func() {
			w := do(mux, http.MethodPost, "/model-construct", validPayload)

			Convey("Then the response should report success with one output", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp constructResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Message, ShouldEqual, "Data received!")
				So(resp.Status, ShouldEqual, "Success!")
				So(resp.DataOut, ShouldHaveLength, 1)
				So(resp.DataOut[0].ElapsedMinutes, ShouldEqual, 60)
			})

			Convey("And the coerced record should be stored", func() {
				So(getData(mux), ShouldResemble, []model.MetricRecord{{Weight: 70.0, Height: 175.0, Age: 30, Time: 60}})
			})
		})

		Convey("When posting several valid payloads", func() {
			for i := 0; i < 3; i++ {
				So(do(mux, http.MethodPost, "/model-construct", validPayload).Code, ShouldEqual, http.StatusOK)
			}

			Convey("Then inputs and outputs should grow together", func() {
				So(svc.Inputs(context.Background()), ShouldHaveLength, 3)
				So(svc.Outputs(context.Background()), ShouldHaveLength, 3)
			})
		})

		Convey("When posting a payload with missing fields", func() {
			before := len(getData(mux))
			w := do(mux, http.MethodPost, "/model-construct", `{"weight":"70"}`)

			Convey("Then it should return a structured 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp errorResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "validation_error")
				So(resp.Message, ShouldContainSubstring, "height")
			})

			Convey("And nothing should be appended", func() {
				So(getData(mux), ShouldHaveLength, before)
				So(svc.Outputs(context.Background()), ShouldHaveLength, before)
			})
		})

		Convey("When posting malformed or non-object bodies", func() {
			for _, body := range []string{
				`{"weight":`, `[1,2]`, `"70"`, `null`,
				validPayload + ` garbage`,
				validPayload + `{"x":1}`,
			} {
				w := do(mux, http.MethodPost, "/model-construct", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}

			Convey("Then nothing should be appended", func() {
				So(getData(mux), ShouldBeEmpty)
			})
		})

		Convey("When posting an empty body", func() {
			w := do(mux, http.MethodPost, "/model-construct", "")

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "empty request body")
			})
		})
	})

	Convey("Given a server with a small body limit", t, func() {
		mux, _ := newMux(api.WithMaxBodyBytes(16))

		Convey("When posting a larger body", func() {
			w := do(mux, http.MethodPost, "/model-construct", validPayload)

			Convey("Then it should return 413", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(getData(mux), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a construct dependency that fails", t, func() {
		handler := api.NewConstructHandler(failingDeps{}, 0)

		Convey("When posting a valid payload", func() {
			req := httptest.NewRequest(http.MethodPost, "/model-construct", strings.NewReader(validPayload))
			w := httptest.NewRecorder()
			handler.HandleModelConstruct(w, req)

			Convey("Then it should return 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "store offline")
			})
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a single request", t, func() {
		mux, svc := newMux(api.WithRateLimit(0.001, 1))

		first := do(mux, http.MethodPost, "/model-construct", validPayload)
		second := do(mux, http.MethodPost, "/model-construct", validPayload)

		Convey("Then the second compute should be rejected", func() {
			So(first.Code, ShouldEqual, http.StatusOK)
			So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			So(second.Header().Get("Retry-After"), ShouldEqual, "1")
			So(second.Body.String(), ShouldContainSubstring, "rate_limited")
			So(svc.Inputs(context.Background()), ShouldHaveLength, 1)
		})

		Convey("And reads should not be limited", func() {
			So(getData(mux), ShouldHaveLength, 1)
		})
	})

	Convey("Given a non-positive rate", t, func() {
		mux, _ := newMux(api.WithRateLimit(0, 1))

		Convey("Then limiting should be disabled", func() {
			for i := 0; i < 5; i++ {
				So(do(mux, http.MethodPost, "/model-construct", validPayload).Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Given a server with two constructed records", t, func() {
		mux, _ := newMux()
		do(mux, http.MethodPost, "/model-construct", validPayload)
		do(mux, http.MethodPost, "/model-construct", validPayload)

		Convey("When resetting", func() {
			w := do(mux, http.MethodPost, "/reset", "")

			Convey("Then it should acknowledge the reset", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp ackResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Message, ShouldEqual, "Data cleared!")
				So(resp.Status, ShouldEqual, "success")
			})

			Convey("And data should be empty", func() {
				So(getData(mux), ShouldBeEmpty)
			})

			Convey("And a subsequent construct should restart counts", func() {
				w := do(mux, http.MethodPost, "/model-construct", validPayload)
				var resp constructResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.DataOut, ShouldHaveLength, 1)
			})

			Convey("And resetting twice should leave it empty", func() {
				So(do(mux, http.MethodPost, "/reset", "").Code, ShouldEqual, http.StatusOK)
				So(getData(mux), ShouldBeEmpty)
			})
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		handler := api.NewStatsHandler(&mockStatsProvider{stats: map[string]interface{}{"entries": 2}})

		Convey("When handling GET /stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should encode the provider stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&stats), ShouldBeNil)
				So(stats["entries"], ShouldEqual, 2.0)
				So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
			})
		})
	})

	Convey("Given a stats handler without a provider", t, func() {
		handler := api.NewStatsHandler(nil)
		req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
		w := httptest.NewRecorder()
		handler.HandleStats(w, req)

		Convey("Then it should report the service unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			var resp errorResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "unavailable")
			So(resp.Message, ShouldEqual, "api.stats: service unavailable")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API error helpers", t, func() {
		cause := errors.New("boom")

		Convey("When wrapping with a kind", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)

			Convey("Then both kind and cause should match", func() {
				So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			})
		})

		Convey("When creating a bare kind", func() {
			err := api.NewKind("api.op", api.ErrUnavailable)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: service unavailable")
		})

		Convey("When wrapping nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		})
	})
}
