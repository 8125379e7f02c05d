package chord

import "sort"

// Catalog is a fixed named collection of open chord shapes. Finger numbers
// follow the fingertip convention: 1 = index, 2 = middle, 3 = ring,
// 4 = pinky.
type Catalog struct {
	templates map[string]*Template
}

// NewCatalog builds the standard open-position catalog.
func NewCatalog() *Catalog {
	open := StringConstraint{Kind: Open}
	muted := StringConstraint{Kind: Muted}

	templates := []*Template{
		{Name: "C", Strings: map[int]StringConstraint{
			6: muted, 5: fretted(3, 3), 4: fretted(2, 2), 3: open, 2: fretted(1, 1), 1: open,
		}},
		{Name: "D", Strings: map[int]StringConstraint{
			6: muted, 5: muted, 4: open, 3: fretted(2, 1), 2: fretted(3, 3), 1: fretted(2, 2),
		}},
		{Name: "E", Strings: map[int]StringConstraint{
			6: open, 5: fretted(2, 2), 4: fretted(2, 3), 3: fretted(1, 1), 2: open, 1: open,
		}},
		{Name: "G", Strings: map[int]StringConstraint{
			6: fretted(3, 2), 5: fretted(2, 1), 4: open, 3: open, 2: open, 1: fretted(3, 3),
		}},
		{Name: "A", Strings: map[int]StringConstraint{
			6: muted, 5: open, 4: fretted(2, 1), 3: fretted(2, 2), 2: fretted(2, 3), 1: open,
		}},
		{Name: "Am", Strings: map[int]StringConstraint{
			6: muted, 5: open, 4: fretted(2, 2), 3: fretted(2, 3), 2: fretted(1, 1), 1: open,
		}},
		{Name: "Em", Strings: map[int]StringConstraint{
			6: open, 5: fretted(2, 2), 4: fretted(2, 3), 3: open, 2: open, 1: open,
		}},
		{Name: "Dm", Strings: map[int]StringConstraint{
			6: muted, 5: muted, 4: open, 3: fretted(2, 2), 2: fretted(3, 3), 1: fretted(1, 1),
		}},
	}

	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		c.templates[t.Name] = t
	}
	return c
}

// Lookup returns the template for a chord name, or nil and false when the
// catalog has no such shape.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// Names lists the catalog's chord names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
