package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"

	"readiness-workers/internal/common/errors"

	"github.com/rotisserie/eris"
)

// JobError maps a repository failure onto the worker error taxonomy so the
// BPMN error handler can decide whether to retry.
func JobError(queryType string, err error) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case is(err, context.DeadlineExceeded):
		return errors.NewQueryTimeoutError(queryType)
	case is(err, sql.ErrConnDone), is(err, driver.ErrBadConn):
		return errors.NewDatabaseConnectionFailedError(err)
	default:
		return errors.NewQueryExecutionFailedError(queryType, err)
	}
}

// WriteError is JobError for failed inserts and updates.
func WriteError(queryType string, err error) *errors.StandardError {
	if is(err, context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewDatabaseInsertFailedError(err)
}

func is(err, target error) bool {
	return stderrors.Is(err, target) || eris.Is(err, target)
}
