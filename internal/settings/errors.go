package settings

import (
	"errors"
	"os"
	"sync/atomic"
)

// ErrResetOutsideTest is the panic value when ResetAll runs outside a
// recognized test context.
var ErrResetOutsideTest = errors.New("settings: ResetAll called outside a test context")

var testMode atomic.Bool

func init() {
	if os.Getenv("PYMANAGER_TEST_MODE") != "" {
		testMode.Store(true)
	}
}

// EnableTestMode marks the process as a test harness, unlocking ResetAll
// and the empty-path fallback in Absolutize.
func EnableTestMode() {
	testMode.Store(true)
}

// SetTestMode sets the test-harness flag explicitly.
func SetTestMode(on bool) {
	testMode.Store(on)
}

// TestMode reports whether the process runs under a test harness.
func TestMode() bool {
	return testMode.Load()
}
