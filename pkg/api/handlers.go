package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	logging "github.com/op/go-logging"

	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/report"
	"github.com/ssargent/stockdb/pkg/store"
)

var log = logging.MustGetLogger("api")

const maxRequestBody = 4096

// Server holds the API server state. The record store is not safe for
// concurrent use, so every call into it goes through mu.
type Server struct {
	mu      sync.Mutex
	store   IRecordStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(store IRecordStore, config ServerConfig, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
	}
}

// call runs fn against the store under the lock and records it
func (s *Server) call(operation string, fn func(IRecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := fn(s.store)
	s.metrics.RecordStoreOperation(operation, err == nil, time.Since(start))
	return err
}

// sendStoreError maps a store error onto a status code
func sendStoreError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, store.ErrIndexOutOfRange):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrStoreUnavailable):
		log.Errorf("%s: %v", operation, err)
		sendError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Errorf("%s: %v", operation, err)
		sendError(w, fmt.Sprintf("Failed to %s: %v", operation, err), http.StatusInternalServerError)
	}
}

func indexParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return index, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var count int64
	err := s.call("count", func(st IRecordStore) (err error) {
		count, err = st.Count()
		return err
	})
	if err != nil {
		s.metrics.RecordHealthCheck(false)
		sendError(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
		return
	}

	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{"status": "healthy", "records": count})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var entries []report.Entry
	err := s.call("list", func(st IRecordStore) (err error) {
		entries, err = report.Collect(st)
		return err
	})
	if err != nil {
		sendStoreError(w, "list records", err)
		return
	}
	sendSuccess(w, entries)
}

func (s *Server) handleAppendRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	record := codec.NewRecord(req.Name, req.Code, float32(req.Price))

	var count int64
	err := s.call("append", func(st IRecordStore) error {
		if err := st.Append(record); err != nil {
			return err
		}
		var err error
		count, err = st.Count()
		return err
	})
	if err != nil {
		sendStoreError(w, "append record", err)
		return
	}

	sendSuccessStatus(w, report.NewEntry(count-1, record), http.StatusCreated)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	var count int64
	err := s.call("count", func(st IRecordStore) (err error) {
		count, err = st.Count()
		return err
	})
	if err != nil {
		sendStoreError(w, "count records", err)
		return
	}
	sendSuccess(w, CountResponse{Count: count})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var record *codec.Record
	err = s.call("read", func(st IRecordStore) (err error) {
		record, err = st.ReadAt(index)
		return err
	})
	if err != nil {
		sendStoreError(w, "read record", err)
		return
	}
	sendSuccess(w, report.NewEntry(index, record))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.call("delete", func(st IRecordStore) error {
		return st.DeleteAt(index)
	})
	if err != nil {
		sendStoreError(w, "delete record", err)
		return
	}
	sendSuccess(w, map[string]interface{}{"message": "Record deleted", "index": index})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.call("report", func(st IRecordStore) error {
		_, err := report.Generate(&buf, st)
		return err
	})
	if err != nil {
		sendStoreError(w, "generate report", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var result *store.CheckResult
	err := s.call("check", func(st IRecordStore) (err error) {
		result, err = st.Check()
		return err
	})
	if err != nil {
		sendStoreError(w, "check data file", err)
		return
	}
	s.metrics.UpdateStoreStats(result.Records, result.FileSize, result.TrailingBytes)
	sendSuccess(w, result)
}

// refreshStats updates the data file gauges from a store check
func (s *Server) refreshStats() {
	var result *store.CheckResult
	err := s.call("check", func(st IRecordStore) (err error) {
		result, err = st.Check()
		return err
	})
	if err != nil {
		log.Warningf("metrics refresh failed: %v", err)
		return
	}
	s.metrics.UpdateStoreStats(result.Records, result.FileSize, result.TrailingBytes)
}

// startMetricsUpdater periodically updates store metrics until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshStats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshStats()
		}
	}
}
