package service

import (
	"cmp"
	"math"
	"slices"

	"coc-war-tracker/internal/domain"
)

type MemberReport struct {
	Tag                  string `json:"tag"`
	Name                 string `json:"name"`
	ClanTag              string `json:"clan_tag"`
	TownHall             *int   `json:"town_hall,omitempty"`
	MapPosition          *int   `json:"map_position,omitempty"`
	IsOpponent           bool   `json:"is_opponent"`
	Attacks              int    `json:"attacks"`
	Stars                int    `json:"stars"`
	Defenses             int    `json:"defenses"`
	BestOpponentAttacker string `json:"best_opponent_attacker,omitempty"`
	BestOpponentStars    int    `json:"best_opponent_stars"`
}

type Report struct {
	WarID       string         `json:"war_id,omitempty"`
	Source      string         `json:"source,omitempty"`
	WarTag      string         `json:"war_tag,omitempty"`
	State       string         `json:"state"`
	Type        string         `json:"type,omitempty"`
	Status      string         `json:"status,omitempty"`
	ClanTag     string         `json:"clan_tag,omitempty"`
	OpponentTag string         `json:"opponent_tag,omitempty"`
	Attacks     int            `json:"attacks"`
	Members     []MemberReport `json:"members"`
}

// BuildReport summarises a war per member: home side first, each side by
// map position.
func BuildReport(war *domain.War) Report {
	r := Report{
		WarTag:  war.WarTag,
		State:   war.State,
		Type:    war.Type(),
		Status:  war.Status(),
		Attacks: len(war.Attacks()),
	}
	if c := war.Clan(); c != nil {
		r.ClanTag = c.Tag
	}
	if o := war.Opponent(); o != nil {
		r.OpponentTag = o.Tag
	}

	members := war.Members()
	r.Members = make([]MemberReport, 0, len(members))
	for _, m := range members {
		mr := MemberReport{
			Tag:         m.Tag,
			Name:        m.Name,
			TownHall:    m.TownHall,
			MapPosition: m.MapPosition,
			IsOpponent:  m.IsOpponent(),
			Attacks:     len(m.Attacks()),
			Stars:       m.Stars(),
			Defenses:    len(m.Defenses()),
		}
		if c := m.Clan(); c != nil {
			mr.ClanTag = c.Tag
		}
		if best := m.BestOpponentAttack(); best != nil {
			mr.BestOpponentAttacker = best.AttackerTag
			mr.BestOpponentStars = best.Stars
		}
		r.Members = append(r.Members, mr)
	}

	slices.SortStableFunc(r.Members, func(a, b MemberReport) int {
		if a.IsOpponent != b.IsOpponent {
			if a.IsOpponent {
				return 1
			}
			return -1
		}
		return cmp.Compare(position(a.MapPosition), position(b.MapPosition))
	})

	return r
}

// members without a map position sort last
func position(p *int) int {
	if p == nil {
		return math.MaxInt
	}
	return *p
}
