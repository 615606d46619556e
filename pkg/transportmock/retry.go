package transportmock

import (
	"errors"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// retryFor polls do until it reports success or the duration runs out,
// telling it how much time remains on each attempt.
func retryFor(do func(time.Duration) bool, delay, duration time.Duration) bool {
	start := time.Now()
	err := retry.Do(func() error {
		timeLeft := duration - time.Since(start)
		if !do(timeLeft) {
			return errors.New("retry")
		}
		return nil
	}, retry.Attempts(0), retry.Delay(delay), retry.DelayType(retry.FixedDelay), retry.RetryIf(func(err error) bool {
		return err != nil && time.Since(start) <= duration
	}))
	return err == nil
}
