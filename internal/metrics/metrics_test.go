package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncCommitted("5")
		IncCancelled()
		IncRejected("conflict")
		IncSnapshotWriteFailure()
		IncHTTP("slots")
	})
}
