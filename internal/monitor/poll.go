package monitor

import "time"

// PollUntil evaluates pred up to maxAttempts times, sleeping interval between
// attempts, and reports whether it became true and after how many checks.
// A non-positive maxAttempts performs no checks.
func PollUntil(pred func() bool, maxAttempts int, interval time.Duration, sleep func(time.Duration)) (bool, int) {
	if sleep == nil {
		sleep = time.Sleep
	}
	if maxAttempts <= 0 {
		return false, 0
	}
	for i := 1; i <= maxAttempts; i++ {
		if pred() {
			return true, i
		}
		if i < maxAttempts {
			sleep(interval)
		}
	}
	return false, maxAttempts
}
