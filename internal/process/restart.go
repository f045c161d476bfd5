package process

import (
	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/crashloop"
)

// Restart clears the crash-loop flag, then stops and starts svc. The
// clear must precede Stop: if Start subsequently fails, the user still
// has a working manual-recovery path instead of being stuck behind a
// sticky flag from the previous failure.
func Restart(c *Controller, d *crashloop.Detector, svc configstore.Service) error {
	if _, err := d.ClearCrashLoop(svc.Name); err != nil {
		return err
	}
	if err := c.Stop(svc.Name); err != nil {
		return err
	}
	return c.Start(svc)
}
