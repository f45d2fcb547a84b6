package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
)

// sqliteBusy and sqliteLocked are the primary result codes for lock
// contention; extended codes carry them in the low byte.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// IsTransient reports whether a storage error is safe to retry:
// lock contention, dropped connections and admin shutdowns. Constraint
// violations and validation-class errors are permanent and never match.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		primary := serr.Code() & 0xFF
		return primary == sqliteBusy || primary == sqliteLocked
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 = connection exception, 57P03 = cannot_connect_now,
		// 40001/40P01 = serialization failure and deadlock.
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P03" ||
			pgErr.Code == "40001" ||
			pgErr.Code == "40P01"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Pool errors that arrive already flattened to strings.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"conn closed",
		"database is locked",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
