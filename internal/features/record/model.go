package record

import (
	"fmt"

	"go-admin/pkg/condition"
)

type Record = condition.Record

// ListQuery is the raw, transport-agnostic list request. Limit is nil when
// the caller did not send one. A non-empty PKs fetches those primary keys
// and ignores Where.
type ListQuery struct {
	Skip    int64
	Limit   *int64
	OrderBy []string
	Where   string
	PKs     []string
}

type PageResult struct {
	Items []Record `json:"items"`
	Total int64    `json:"total"`
}

// DataAccessError wraps a provider failure. Only Ref is meant for clients;
// the rest is for the server log.
type DataAccessError struct {
	Module  string
	Backend string
	Op      string
	Ref     string
	Err     error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s %s on %s backend failed (ref %s): %v", e.Module, e.Op, e.Backend, e.Ref, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }
