package orchestrator

import "time"

// pollBackoff doubles base once per consecutive failure and caps the result at max.
func pollBackoff(failures int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if failures <= 0 {
		if max > 0 && base > max {
			return max
		}
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		if max > 0 && delay > max/2 {
			return max
		}
		delay *= 2
	}
	if max > 0 && delay > max {
		return max
	}
	return delay
}
