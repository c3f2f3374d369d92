package container

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/danpasecinic/spool/internal/resolution"
)

// Info is a printable snapshot of one registration.
type Info struct {
	Container string
	Keys      []string
	Lifetimes string
	Scope     string
	Comparer  string
}

func (r *Registration) Info() Info {
	keys := make([]string, len(r.context.Keys))
	for i, k := range r.context.Keys {
		keys[i] = k.String()
	}

	scope := "default"
	if s := r.context.Scope(); s != nil {
		scope = fmt.Sprint(s)
	}

	return Info{
		Container: r.container.id,
		Keys:      keys,
		Lifetimes: r.lifetimes.String(),
		Scope:     scope,
		Comparer:  fmt.Sprint(r.comparer),
	}
}

// Infos lists registrations of c and its ancestors, nearest container first.
func (c *Container) Infos() []Info {
	var infos []Info
	for a := c; a != nil; a = a.parent {
		for _, reg := range a.Registrations() {
			infos = append(infos, reg.Info())
		}
	}
	return infos
}

// Dump renders the registrations visible from c as a table.
func (c *Container) Dump() string {
	return RenderInfos(c.Infos())
}

func (c *Container) dumpLocked() string {
	infos := make([]Info, 0, len(c.order))
	for _, reg := range c.order {
		infos = append(infos, reg.Info())
	}
	return RenderInfos(infos)
}

func RenderInfos(infos []Info) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Container", "Keys", "Lifetimes", "Scope", "Comparer"})
	for _, info := range infos {
		t.AppendRow(table.Row{
			shortID(info.Container),
			strings.Join(info.Keys, "\n"),
			info.Lifetimes,
			info.Scope,
			info.Comparer,
		})
	}
	if len(infos) == 0 {
		t.AppendFooter(table.Row{"", "no registrations", "", "", ""})
	}
	return t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var _ resolution.Registry = (*Container)(nil)
