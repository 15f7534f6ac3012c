package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// SessionCleanupJob deletes sessions past their expiry.
type SessionCleanupJob struct {
	sessions SessionCleaner
}

func NewSessionCleanupJob(sessions SessionCleaner) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions}
}

func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}
	n, err := j.sessions.CleanupSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logutil.GetLogger(ctx).Info("expired sessions removed", zap.Int64("count", n))
	}
	return nil
}
