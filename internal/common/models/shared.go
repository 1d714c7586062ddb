package models

import (
	"time"
)

type ContextKey string

const (
	RequestRefKey ContextKey = "request_ref"
)

// Log is a persisted warn+ log line.
type Log struct {
	AppId        string            `bson:"app_id" json:"app_id"`
	Message      string            `bson:"message" json:"message"`
	LogLevelId   int               `bson:"log_level_id" json:"log_level_id"`
	Caller       string            `bson:"caller,omitempty" json:"caller,omitempty"`
	Module       string            `bson:"module,omitempty" json:"module,omitempty"`
	Ref          string            `bson:"ref,omitempty" json:"ref,omitempty"`
	Fields       map[string]string `bson:"fields,omitempty" json:"fields,omitempty"`
	CreatedOnUtc time.Time         `bson:"created_on_utc" json:"created_on_utc"`
}
