package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maintdesk/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrAlreadyClaimed is returned by Claim when a lock row for the (plan, day)
// pair already exists, meaning another invocation generated this cycle.
var ErrAlreadyClaimed = errors.New("execution already claimed")

// LockGateway grants exactly-once generation rights per (plan, calendar day).
// Claim must be atomic at the storage layer; a second claim for the same pair
// fails with ErrAlreadyClaimed. There is no unclaim: a claimed lock is permanent
// for that day.
type LockGateway interface {
	Claim(ctx context.Context, planID, dayKey string) error
}

// DayKey truncates t to a calendar-day string in UTC, the engine's reference
// timezone for lock granularity.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GormLockGateway implements LockGateway as an attempted insert of a row with a
// composite unique index on (plan_id, execution_date).
type GormLockGateway struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormLockGateway creates a lock gateway backed by the shared database.
func NewGormLockGateway(db *gorm.DB, logger *logrus.Logger) *GormLockGateway {
	if logger == nil {
		logger = logrus.New()
	}
	return &GormLockGateway{db: db, logger: logger}
}

// Claim inserts the lock row. A uniqueness violation maps to ErrAlreadyClaimed;
// any other failure is returned as-is and the caller must treat it as claimed
// (fail-closed) to preserve the at-most-once invariant.
func (g *GormLockGateway) Claim(ctx context.Context, planID, dayKey string) error {
	lock := &models.PlanExecution{
		PlanID:        planID,
		ExecutionDate: dayKey,
	}

	if err := g.db.WithContext(ctx).Create(lock).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrAlreadyClaimed
		}
		return fmt.Errorf("claim execution lock: %w", err)
	}

	g.logger.Debugf("Claimed execution lock for plan %s on %s", planID, dayKey)
	return nil
}

// isDuplicateKeyError recognizes uniqueness violations across drivers. GORM
// translates them to ErrDuplicatedKey when the dialector supports it; the
// message checks cover postgres and sqlite otherwise.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
