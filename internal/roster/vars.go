package roster

import (
	"strconv"

	"github.com/jask/rostertab/internal/text"
)

// PopulationVars substitutes member variables: {name}, {online}, {group},
// {group_tag}, {world} and every entry of the member's Vars map.
type PopulationVars struct {
	Population Population
	Groups     *Groups
}

func (p PopulationVars) Substitute(subject Viewer, s string) string {
	vars := text.Vars{"name": subject.Name()}
	if p.Population != nil {
		vars["online"] = strconv.Itoa(len(p.Population.Members()))
		if m, ok := p.Population.Member(subject.ID()); ok {
			for k, v := range m.Vars {
				vars[k] = v
			}
			if m.Location != nil {
				vars["world"] = m.Location.World
			}
		}
	}
	if g := p.Groups.Resolve(subject); g != nil {
		vars["group"] = g.ID
		vars["group_tag"] = text.Format(g.Tag)
	} else {
		vars["group"] = ""
		vars["group_tag"] = ""
	}
	return vars.Apply(s)
}
