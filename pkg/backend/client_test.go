package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

func canListen(t *testing.T) bool {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot bind for test: %v", err)
		return false
	}
	ln.Close()
	return true
}

func newBackendStub(t *testing.T, failResource string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics":
			if failResource == "metrics" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]float64{"parts_completed": 42, "active_conveyors": 6})
		case "/api/alerts":
			if failResource == "alerts" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode([]types.Alert{
				{Type: "conveyor_slow", Severity: types.SeverityWarning, ConveyorID: "C7"},
			})
		case "/api/table/conveyors", "/api/table/queue", "/api/table/events":
			if failResource == "rows" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode([]types.Row{
				{"conveyor_id": "C7", "status": "running"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(Config{Endpoint: "http://localhost:8000"}, logrus.New())
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
}

func TestClient_FetchAll_Success(t *testing.T) {
	if !canListen(t) {
		return
	}
	server := newBackendStub(t, "")
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	res, err := c.FetchAll(context.Background(), Query{
		View:       types.ViewConveyors,
		Limit:      100,
		Thresholds: types.ThresholdsFor(false),
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if res.Metrics["parts_completed"] != 42 {
		t.Errorf("metrics = %+v", res.Metrics)
	}
	if len(res.Alerts) != 1 || res.Alerts[0].ConveyorID != "C7" {
		t.Errorf("alerts = %+v", res.Alerts)
	}
	if len(res.Rows) != 1 || res.Rows[0].Field("status") != "running" {
		t.Errorf("rows = %+v", res.Rows)
	}
}

func TestClient_FetchAll_PartialFailureDiscardsAll(t *testing.T) {
	if !canListen(t) {
		return
	}
	for _, fail := range []string{"metrics", "alerts", "rows"} {
		server := newBackendStub(t, fail)
		c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
		res, err := c.FetchAll(context.Background(), Query{
			View:       types.ViewConveyors,
			Thresholds: types.ThresholdsFor(false),
		})
		server.Close()

		if err == nil {
			t.Fatalf("fail=%s: expected error", fail)
		}
		if res != nil {
			t.Errorf("fail=%s: partial result must be discarded, got %+v", fail, res)
		}
		var rerr *ResourceError
		if !errors.As(err, &rerr) || rerr.Resource != fail {
			t.Errorf("fail=%s: error should name the failing resource, got %v", fail, err)
		}
	}
}

func TestClient_FetchAll_ThresholdParams(t *testing.T) {
	if !canListen(t) {
		return
	}
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics":
			json.NewEncoder(w).Encode(map[string]float64{})
		case "/api/alerts":
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]types.Alert{})
		default:
			json.NewEncoder(w).Encode([]types.Row{})
		}
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	_, err := c.FetchAll(context.Background(), Query{
		View:       types.ViewEvents,
		Thresholds: types.ThresholdsFor(true),
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	want := "slow_duration_seconds=2&stale_seconds=5&window_minutes=1"
	if gotQuery != want {
		t.Errorf("tight-monitoring alert query = %q, want %q", gotQuery, want)
	}
}

func TestClient_FetchAll_QueueStageParam(t *testing.T) {
	if !canListen(t) {
		return
	}
	var gotQuery, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics":
			json.NewEncoder(w).Encode(map[string]float64{})
		case "/api/alerts":
			json.NewEncoder(w).Encode([]types.Alert{})
		default:
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]types.Row{})
		}
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	_, err := c.FetchAll(context.Background(), Query{
		View:       types.ViewQueue,
		Stage:      "paint",
		Limit:      50,
		Thresholds: types.ThresholdsFor(false),
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if gotPath != "/api/table/queue" {
		t.Errorf("table path = %q", gotPath)
	}
	if gotQuery != "limit=50&stage=paint" {
		t.Errorf("queue query = %q", gotQuery)
	}
}

func TestClient_FetchAll_StageIgnoredOutsideQueueView(t *testing.T) {
	if !canListen(t) {
		return
	}
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics":
			json.NewEncoder(w).Encode(map[string]float64{})
		case "/api/alerts":
			json.NewEncoder(w).Encode([]types.Alert{})
		default:
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]types.Row{})
		}
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	_, err := c.FetchAll(context.Background(), Query{
		View:       types.ViewConveyors,
		Stage:      "paint",
		Limit:      50,
		Thresholds: types.ThresholdsFor(false),
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if gotQuery != "limit=50" {
		t.Errorf("conveyors query = %q, stage must not be sent", gotQuery)
	}
}

func TestClient_FetchAll_EmptyResultsAreValid(t *testing.T) {
	if !canListen(t) {
		return
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/metrics":
			json.NewEncoder(w).Encode(map[string]float64{})
		default:
			json.NewEncoder(w).Encode([]interface{}{})
		}
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	res, err := c.FetchAll(context.Background(), Query{
		View:       types.ViewEvents,
		Thresholds: types.ThresholdsFor(false),
	})
	if err != nil {
		t.Fatalf("empty results must not be an error: %v", err)
	}
	if len(res.Alerts) != 0 || len(res.Rows) != 0 {
		t.Errorf("expected empty alerts/rows, got %+v", res)
	}
}

func TestClient_FetchAll_NotConfigured(t *testing.T) {
	c := NewClient(Config{}, logrus.New())
	if _, err := c.FetchAll(context.Background(), Query{View: types.ViewEvents}); err == nil {
		t.Error("expected error when endpoint not configured")
	}
}

func TestClient_FetchAll_UnknownView(t *testing.T) {
	if !canListen(t) {
		return
	}
	server := newBackendStub(t, "")
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second}, logrus.New())
	_, err := c.FetchAll(context.Background(), Query{View: types.View("robots")})
	if err == nil {
		t.Fatal("expected error for unknown view")
	}
	var rerr *ResourceError
	if !errors.As(err, &rerr) || rerr.Resource != "rows" {
		t.Errorf("unknown view should surface as a rows failure, got %v", err)
	}
}
