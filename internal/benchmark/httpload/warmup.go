package httpload

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Warmup primes a target's connection pools and caches before a measured round
type Warmup struct {
	Requests    int           // sequential requests to send
	MaxDuration time.Duration // optional upper bound on the whole warmup, 0 = none
	Timeout     time.Duration // per request
	Logger      logrus.FieldLogger
}

// WarmupReport tells how the warmup went. It is informational only.
type WarmupReport struct {
	Attempts int
	Failures int
	Elapsed  time.Duration
}

// Run sends the warmup requests one after another. Failures are logged and
// otherwise ignored; the only error returned is ctx's.
func (w Warmup) Run(ctx context.Context, client Doer, url string) (WarmupReport, error) {
	log := w.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("url", url)
	log.Infof("Warming up %s", url)

	attempter := Attempter{URL: url, Timeout: w.Timeout}
	start := time.Now()
	var report WarmupReport

	for i := 0; i < w.Requests; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if w.MaxDuration > 0 && time.Since(start) >= w.MaxDuration {
			break
		}

		sample := attempter.Do(ctx, client, 0)
		report.Attempts++
		if sample.Outcome != benchmark.OutcomeSuccess {
			report.Failures++
			log.WithFields(logrus.Fields{
				"attempt": i + 1,
				"outcome": sample.Outcome.String(),
				"status":  sample.StatusCode,
			}).Debug("warmup request failed")
		}
	}

	report.Elapsed = time.Since(start)
	if report.Failures > 0 {
		log.Warnf("warmup finished with %d/%d failed requests", report.Failures, report.Attempts)
	} else {
		log.Info("Warmup complete")
	}
	return report, nil
}

// Cooldown pauses without sending requests so the previous target can return
// to its baseline before the next measurement. Remaining time is logged once
// per second.
func Cooldown(ctx context.Context, d time.Duration, logger logrus.FieldLogger) error {
	if d <= 0 {
		return nil
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.Infof("Cooling down for %s...", d)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	timer := time.NewTimer(d)
	defer timer.Stop()

	deadline := time.Now().Add(d)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			logger.Info("Ready for next round")
			return nil
		case <-ticker.C:
			if left := time.Until(deadline).Round(time.Second); left > 0 {
				logger.Debugf("Resuming in %s", left)
			}
		}
	}
}
