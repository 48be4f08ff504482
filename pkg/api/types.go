package api

import (
	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/report"
	"github.com/ssargent/stockdb/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordRequest is the body of an append request
type RecordRequest struct {
	Name  string       `json:"name"`
	Code  int32        `json:"code"`
	Price report.Price `json:"price"`
}

// CountResponse carries the number of records
type CountResponse struct {
	Count int64 `json:"count"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // empty disables authentication
}

// IRecordStore defines the record store operations served over HTTP
type IRecordStore interface {
	Count() (int64, error)
	Append(record *codec.Record) error
	ReadAt(index int64) (*codec.Record, error)
	ReadAll() store.RecordIterator
	DeleteAt(index int64) error
	Check() (*store.CheckResult, error)
}
