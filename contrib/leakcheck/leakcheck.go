package leakcheck

import (
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"
)

// ReportLeakedGoroutines checks that only the calling goroutine remains
// running.  Operation goroutines are expected to clean themselves up shortly
// after their queue has been shut down and drained, so anything still alive
// after the grace period is treated as a leak and dumped to stdout.
func ReportLeakedGoroutines() bool {
	expectedGoroutineCount := 1

	// Allow up to a second for transport goroutines to observe their
	// cancelled contexts and unwind.
	goroutineCleanupPeriod := 1 * time.Second

	var finalGoroutineCount int
	start := time.Now()
	for time.Since(start) <= goroutineCleanupPeriod {
		runtime.Gosched()

		finalGoroutineCount = runtime.NumGoroutine()
		if finalGoroutineCount == expectedGoroutineCount {
			break
		}

		time.Sleep(10 * time.Millisecond)
	}

	if finalGoroutineCount != expectedGoroutineCount {
		log.Printf("Detected a goroutine leak (%d goroutines != %d)", finalGoroutineCount, expectedGoroutineCount)
		_ = pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
		return false
	}

	log.Printf("No goroutines appear to have leaked (%d before == %d after)", finalGoroutineCount, expectedGoroutineCount)
	return true
}
