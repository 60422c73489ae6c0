package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

// Dump renders an error chain for log output, expanding postgres driver
// errors into their constituent fields.
func Dump(err error) string {
	if err == nil {
		return "<nil>"
	}

	var sb strings.Builder
	depth := 0
	for err != nil {
		if depth > 0 {
			sb.WriteString(" <- ")
		}

		var pgErr *pgconn.PgError
		var pqErr *pq.Error
		switch {
		case stdErrors.As(err, &pgErr) && err == error(pgErr):
			fmt.Fprintf(&sb, "pg[%s] %s", pgErr.Code, pgErr.Message)
			if pgErr.Detail != "" {
				fmt.Fprintf(&sb, " detail=%q", pgErr.Detail)
			}
			if pgErr.ConstraintName != "" {
				fmt.Fprintf(&sb, " constraint=%s", pgErr.ConstraintName)
			}
			if pgErr.TableName != "" {
				fmt.Fprintf(&sb, " table=%s", pgErr.TableName)
			}
		case stdErrors.As(err, &pqErr) && err == error(pqErr):
			fmt.Fprintf(&sb, "pq[%s] %s", pqErr.Code, pqErr.Message)
			if pqErr.Detail != "" {
				fmt.Fprintf(&sb, " detail=%q", pqErr.Detail)
			}
			if pqErr.Constraint != "" {
				fmt.Fprintf(&sb, " constraint=%s", pqErr.Constraint)
			}
		default:
			sb.WriteString(err.Error())
		}

		next := stdErrors.Unwrap(err)
		if next != nil && next.Error() == err.Error() {
			break
		}
		err = next
		depth++
		if depth > 16 {
			sb.WriteString(" <- ...")
			break
		}
	}
	return sb.String()
}
