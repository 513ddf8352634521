package usecase

import (
	"context"
	"errors"
	"time"

	repo "inventory/internal/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// 競合時のリトライ設定
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: 20 * time.Millisecond}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = 20 * p.InitialInterval
	return b
}

// txRunner は書き込み系usecaseが共有する。
// ErrConflictだけをリトライし、それ以外はそのまま（AppErrorならAppError）返す。
type txRunner struct {
	tm     repo.TransactionManager
	policy RetryPolicy
	log    logrus.FieldLogger
}

func newTxRunner(tm repo.TransactionManager, policy RetryPolicy, log logrus.FieldLogger) txRunner {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy().InitialInterval
	}
	return txRunner{tm: tm, policy: policy, log: log}
}

func (t txRunner) run(ctx context.Context, op string, fn func(r repo.TxRepos) error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := t.tm.WithinTx(ctx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, repo.ErrConflict) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(t.policy.backOff()),
		backoff.WithMaxTries(t.policy.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.log.WithFields(logrus.Fields{
				"op":      op,
				"attempt": attempt,
				"backoff": next.String(),
			}).WithError(err).Warn("transaction conflict, retrying")
		}),
	)
	if err == nil {
		return nil
	}

	//最後の試行がPermanentだとラップされたまま返ってくる
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return classify(err)
}

// usecase外に出すエラーは全部AppErrorにそろえる
func classify(err error) error {
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, repo.ErrConflict):
		return &AppError{
			Kind:    KindConcurrency,
			Code:    CodeConflict,
			Message: "concurrent update conflict, retry the request",
			Err:     err,
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &AppError{
			Kind:    KindPersistence,
			Code:    CodePersistence,
			Message: "request cancelled before commit",
			Err:     err,
		}
	}
	return persistence(err)
}
