package tracker_test

import (
	"testing"

	"github.com/2beens/dailyscore/internal/tracker"

	"github.com/stretchr/testify/assert"
)

func TestSession_RememberAndDownloadFlag(t *testing.T) {
	sess := tracker.NewSession()
	assert.Equal(t, 1, sess.Seq())

	sess.Remember([]string{"太极5m", "静坐30m"})
	assert.True(t, sess.IsChecked("太极5m"))
	assert.True(t, sess.IsChecked("静坐30m"))
	assert.False(t, sess.IsChecked("其他5m"))

	sess.Remember(nil)
	assert.False(t, sess.IsChecked("太极5m"))

	assert.False(t, sess.TakeDownloadReady())
}
