package domain

import (
	"fmt"
	"slices"
)

// WarClan is one side of a war and owns that side's members.
type WarClan struct {
	Tag         string
	Name        string
	Level       *int
	AttackCount *int
	Stars       *int
	Destruction *float64
	ExpEarned   *int

	members []*WarMember
	byTag   map[string]*WarMember
	war     *War
}

func NewWarClan(data any, client Client, war *War) (*WarClan, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}

	c := &WarClan{
		Tag:         rec.String("tag"),
		Name:        rec.String("name"),
		Level:       rec.Int("clanLevel"),
		AttackCount: rec.Int("attacks"),
		Stars:       rec.Int("stars"),
		Destruction: rec.Float("destructionPercentage"),
		ExpEarned:   rec.Int("expEarned"),
		war:         war,
	}

	rawMembers, err := rec.Records("members")
	if err != nil {
		return nil, fmt.Errorf("clan %s: %w", c.Tag, err)
	}

	c.members = make([]*WarMember, 0, len(rawMembers))
	c.byTag = make(map[string]*WarMember, len(rawMembers))
	for _, raw := range rawMembers {
		m, err := NewWarMember(raw, client, war, c)
		if err != nil {
			return nil, fmt.Errorf("clan %s: %w", c.Tag, err)
		}
		c.members = append(c.members, m)
		if _, dup := c.byTag[m.Tag]; !dup {
			c.byTag[m.Tag] = m
		}
	}

	return c, nil
}

func (c *WarClan) War() *War {
	return c.war
}

// Members returns the roster in feed order.
func (c *WarClan) Members() []*WarMember {
	return slices.Clone(c.members)
}

func (c *WarClan) Member(tag string) *WarMember {
	return c.byTag[tag]
}

// Attacks returns every attack made by this clan, ordered by attack order.
func (c *WarClan) Attacks() []*Attack {
	var attacks []*Attack
	for _, m := range c.members {
		attacks = append(attacks, m.Attacks()...)
	}
	sortByOrder(attacks)
	if attacks == nil {
		return []*Attack{}
	}
	return attacks
}

// Defenses returns every attack made against this clan's members, ordered
// by attack order. Each attack appears once even when member tags repeat.
func (c *WarClan) Defenses() []*Attack {
	defenses := []*Attack{}
	if c.war == nil {
		return defenses
	}
	for _, a := range c.war.Attacks() {
		if _, ok := c.byTag[a.DefenderTag]; ok {
			defenses = append(defenses, a)
		}
	}
	return defenses
}

func sortByOrder(attacks []*Attack) {
	slices.SortStableFunc(attacks, func(a, b *Attack) int {
		return a.Order - b.Order
	})
}
