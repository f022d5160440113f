package ingest

import (
	"errors"
	"fmt"
)

// DataQualityError codes.
const (
	CodeBillMissingField   = "BILL_MISSING_FIELD"
	CodeMemberMissingField = "MEMBER_MISSING_FIELD"
	CodeCacheUnreadable    = "CACHE_UNREADABLE"
)

// DataQualityError reports a record missing a required field. In strict
// mode the first occurrence aborts the batch; in lenient mode the record
// is skipped and counted, and the error is never returned to the caller.
type DataQualityError struct {
	Code   string
	Record string // identifier of the offending record, best effort
	Field  string
	Err    error
}

func (e *DataQualityError) Error() string {
	msg := fmt.Sprintf("%s: record %q", e.Code, e.Record)
	if e.Field != "" {
		msg += fmt.Sprintf(" missing required field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataQualityError) Unwrap() error {
	return e.Err
}

// IsDataQualityError reports whether err is (or wraps) a DataQualityError.
func IsDataQualityError(err error) bool {
	var dqe *DataQualityError
	return errors.As(err, &dqe)
}
