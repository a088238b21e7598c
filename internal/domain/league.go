package domain

import "fmt"

// placeholderWarTag marks a league round war that has not been scheduled.
const placeholderWarTag = "#0"

// WarLeagueMember is a row of a league master roster. Roster payloads carry
// no war context, so there are no attacks or defenses here.
type WarLeagueMember struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	TownHall *int   `json:"town_hall,omitempty"`
}

func NewWarLeagueMember(data any) (*WarLeagueMember, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}
	return &WarLeagueMember{
		Tag:      rec.String("tag"),
		Name:     rec.String("name"),
		TownHall: rec.Int("townHallLevel"),
	}, nil
}

type LeagueClan struct {
	Tag     string             `json:"tag"`
	Name    string             `json:"name"`
	Level   *int               `json:"level,omitempty"`
	Members []*WarLeagueMember `json:"members"`
}

func NewLeagueClan(data any) (*LeagueClan, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}

	c := &LeagueClan{
		Tag:   rec.String("tag"),
		Name:  rec.String("name"),
		Level: rec.Int("clanLevel"),
	}

	rawMembers, err := rec.Records("members")
	if err != nil {
		return nil, fmt.Errorf("league clan %s: %w", c.Tag, err)
	}
	c.Members = make([]*WarLeagueMember, 0, len(rawMembers))
	for _, raw := range rawMembers {
		m, err := NewWarLeagueMember(raw)
		if err != nil {
			return nil, fmt.Errorf("league clan %s: %w", c.Tag, err)
		}
		c.Members = append(c.Members, m)
	}
	return c, nil
}

// LeagueGroup is a clan war league group for one season. Rounds holds the
// war tags of each round with unscheduled placeholders removed.
type LeagueGroup struct {
	State  string        `json:"state"`
	Season string        `json:"season"`
	Clans  []*LeagueClan `json:"clans"`
	Rounds [][]string    `json:"rounds"`
}

func NewLeagueGroup(data any) (*LeagueGroup, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}

	g := &LeagueGroup{
		State:  rec.String("state"),
		Season: rec.String("season"),
	}

	rawClans, err := rec.Records("clans")
	if err != nil {
		return nil, err
	}
	g.Clans = make([]*LeagueClan, 0, len(rawClans))
	for _, raw := range rawClans {
		c, err := NewLeagueClan(raw)
		if err != nil {
			return nil, err
		}
		g.Clans = append(g.Clans, c)
	}

	rawRounds, err := rec.Records("rounds")
	if err != nil {
		return nil, err
	}
	g.Rounds = make([][]string, 0, len(rawRounds))
	for i, raw := range rawRounds {
		tags, err := raw.Strings("warTags")
		if err != nil {
			return nil, fmt.Errorf("rounds[%d]: %w", i, err)
		}
		round := make([]string, 0, len(tags))
		for _, tag := range tags {
			if tag != "" && tag != placeholderWarTag {
				round = append(round, tag)
			}
		}
		g.Rounds = append(g.Rounds, round)
	}

	return g, nil
}

func (g *LeagueGroup) Clan(tag string) *LeagueClan {
	for _, c := range g.Clans {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// WarTags returns every scheduled war tag in round order.
func (g *LeagueGroup) WarTags() []string {
	var tags []string
	for _, round := range g.Rounds {
		tags = append(tags, round...)
	}
	return tags
}
