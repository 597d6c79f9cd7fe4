package httpload

import "time"

// RampDelay is the gap between consecutive worker launches. Spreading the
// launches over rampUp keeps the arrival rate linear instead of opening every
// connection at once. Attack mode and a zero ramp-up launch everyone together.
func RampDelay(concurrency int, rampUp time.Duration, attack bool) time.Duration {
	if attack || rampUp <= 0 || concurrency < 1 {
		return 0
	}
	return rampUp / time.Duration(concurrency)
}

// RampOffset is the launch time of worker i relative to the first worker
func RampOffset(worker int, delay time.Duration) time.Duration {
	return time.Duration(worker) * delay
}

// RampSchedule returns the launch offset of every worker
func RampSchedule(concurrency int, rampUp time.Duration, attack bool) []time.Duration {
	delay := RampDelay(concurrency, rampUp, attack)
	offsets := make([]time.Duration, concurrency)
	for i := range offsets {
		offsets[i] = RampOffset(i, delay)
	}
	return offsets
}
