package spool

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danpasecinic/spool/internal/container"
)

type RegistrationInfo = container.Info

// Registrations lists what c can resolve: its own registrations first, then
// those of each ancestor.
func (c *Container) Registrations() []RegistrationInfo {
	return c.internal.Infos()
}

func (c *Container) PrintRegistrations() {
	c.FprintRegistrations(os.Stdout)
}

func (c *Container) FprintRegistrations(w io.Writer) {
	_, _ = fmt.Fprintln(w, container.RenderInfos(c.Registrations()))
}

func (c *Container) SprintRegistrations() string {
	var sb strings.Builder
	c.FprintRegistrations(&sb)
	return sb.String()
}
