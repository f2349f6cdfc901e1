package browser_test

import (
	"testing"

	"github.com/soramame27/salescope-backend/internal/browser"
)

func TestShutdownBeforeLaunch(t *testing.T) {
	s := browser.NewSession("test-agent")
	// Never launched: shutdown must be a no-op, and repeatable.
	s.Shutdown()
	s.Shutdown()

	if _, _, err := s.NewTab(); err == nil {
		t.Error("NewTab after Shutdown should fail")
	}
}
