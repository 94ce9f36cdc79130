// Package reporting provides the error-reporting capability handed to
// commands through their invocation context.
//
// Reporting is a side channel: capturing never blocks on delivery and never
// changes the error or panic being propagated by the caller.
package reporting

import (
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
)

// Nop discards every report. It is the default when no DSN is configured.
type Nop struct{}

func (Nop) CaptureError(_ error, _ map[string]string) {}
func (Nop) CapturePanic(_ any, _ map[string]string)   {}
func (Nop) Flush(_ time.Duration) bool                { return true }

var _ domain.Reporter = Nop{}

// OrNop returns r, or Nop when r is nil.
func OrNop(r domain.Reporter) domain.Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}
