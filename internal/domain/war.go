package domain

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	StateNotInWar    = "notInWar"
	StatePreparation = "preparation"
	StateInWar       = "inWar"
	StateWarEnded    = "warEnded"
)

const (
	TypeCWL      = "cwl"
	TypeFriendly = "friendly"
	TypeRandom   = "random"
)

// Preparation lengths a clan can pick for a friendly war. Random wars
// always prepare for 23 hours.
var friendlyPreparations = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	6 * time.Hour,
	8 * time.Hour,
	12 * time.Hour,
	16 * time.Hour,
	20 * time.Hour,
	24 * time.Hour,
}

// War is the aggregate for one clan war. It owns both clans, and through
// them every member and attack, and is the only place attacks are looked
// up by tag.
type War struct {
	State                string
	TeamSize             *int
	AttacksPerMember     *int
	PreparationStartTime *time.Time
	StartTime            *time.Time
	EndTime              *time.Time
	WarTag               string

	clan     *WarClan
	opponent *WarClan
	client   Client
	index    func() *attackIndex
}

type attackKey struct {
	attacker string
	defender string
}

type attackIndex struct {
	ordered    []*Attack
	byPair     map[attackKey]*Attack
	byDefender map[string][]*Attack
}

// NewWar builds a war and both of its clans in one pass.
func NewWar(data any, client Client) (*War, error) {
	return NewWarFor(data, client, "")
}

// NewWarFor builds a war oriented towards clanTag: when clanTag is the
// opponent in the payload, the sides are swapped so that Clan returns it.
func NewWarFor(data any, client Client, clanTag string) (*War, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}

	w := &War{
		State:                rec.String("state"),
		TeamSize:             rec.Int("teamSize"),
		AttacksPerMember:     rec.Int("attacksPerMember"),
		PreparationStartTime: rec.Time("preparationStartTime"),
		StartTime:            rec.Time("startTime"),
		EndTime:              rec.Time("endTime"),
		WarTag:               rec.String("warTag"),
		client:               client,
	}

	rawClan, err := rec.Record("clan")
	if err != nil {
		return nil, err
	}
	rawOpponent, err := rec.Record("opponent")
	if err != nil {
		return nil, err
	}
	if clanTag != "" && rawOpponent.String("tag") == clanTag {
		rawClan, rawOpponent = rawOpponent, rawClan
	}

	if rawClan != nil {
		if w.clan, err = NewWarClan(rawClan, client, w); err != nil {
			return nil, fmt.Errorf("failed to build clan: %w", err)
		}
	}
	if rawOpponent != nil {
		if w.opponent, err = NewWarClan(rawOpponent, client, w); err != nil {
			return nil, fmt.Errorf("failed to build opponent: %w", err)
		}
	}

	w.index = sync.OnceValue(w.buildIndex)
	return w, nil
}

func (w *War) buildIndex() *attackIndex {
	idx := &attackIndex{
		byPair:     make(map[attackKey]*Attack),
		byDefender: make(map[string][]*Attack),
	}
	for _, c := range w.clans() {
		for _, m := range c.members {
			idx.ordered = append(idx.ordered, m.Attacks()...)
		}
	}
	sortByOrder(idx.ordered)

	for _, a := range idx.ordered {
		key := attackKey{attacker: a.AttackerTag, defender: a.DefenderTag}
		if _, ok := idx.byPair[key]; !ok {
			idx.byPair[key] = a
		}
		idx.byDefender[a.DefenderTag] = append(idx.byDefender[a.DefenderTag], a)
	}
	return idx
}

func (w *War) clans() []*WarClan {
	clans := make([]*WarClan, 0, 2)
	if w.clan != nil {
		clans = append(clans, w.clan)
	}
	if w.opponent != nil {
		clans = append(clans, w.opponent)
	}
	return clans
}

func (w *War) Client() Client {
	return w.client
}

// Clan returns the home side, or nil when the payload had none.
func (w *War) Clan() *WarClan {
	return w.clan
}

// Opponent returns the opposing side, or nil when it is not known yet.
func (w *War) Opponent() *WarClan {
	return w.opponent
}

// Members returns the home roster followed by the opponent roster.
func (w *War) Members() []*WarMember {
	var members []*WarMember
	for _, c := range w.clans() {
		members = append(members, c.members...)
	}
	return members
}

func (w *War) Member(tag string) *WarMember {
	for _, c := range w.clans() {
		if m := c.Member(tag); m != nil {
			return m
		}
	}
	return nil
}

// Attacks returns every attack of both sides ordered by attack order.
func (w *War) Attacks() []*Attack {
	if w.index == nil {
		return []*Attack{}
	}
	attacks := slices.Clone(w.index().ordered)
	if attacks == nil {
		return []*Attack{}
	}
	return attacks
}

// GetAttack looks an attack up by its attacker and defender tags.
func (w *War) GetAttack(attackerTag, defenderTag string) *Attack {
	if w.index == nil {
		return nil
	}
	return w.index().byPair[attackKey{attacker: attackerTag, defender: defenderTag}]
}

// GetDefenses returns the attacks made against defenderTag, ordered by
// attack order. Never nil.
func (w *War) GetDefenses(defenderTag string) []*Attack {
	if w.index == nil {
		return []*Attack{}
	}
	defenses := slices.Clone(w.index().byDefender[defenderTag])
	if defenses == nil {
		return []*Attack{}
	}
	return defenses
}

func (w *War) IsCWL() bool {
	return w.WarTag != ""
}

// Type classifies the war as cwl, friendly or random. It is empty when the
// timings needed to tell friendly from random are missing.
func (w *War) Type() string {
	if w.IsCWL() {
		return TypeCWL
	}
	if w.StartTime == nil || w.PreparationStartTime == nil {
		return ""
	}
	if slices.Contains(friendlyPreparations, w.StartTime.Sub(*w.PreparationStartTime)) {
		return TypeFriendly
	}
	return TypeRandom
}

// Status describes the result from the home clan's point of view: winning,
// losing or tied while in war; won, lost or tie once ended.
func (w *War) Status() string {
	if w.clan == nil || w.opponent == nil {
		return ""
	}

	result := cmp.Compare(deref(w.clan.Stars), deref(w.opponent.Stars))
	if result == 0 {
		result = cmp.Compare(deref(w.clan.Destruction), deref(w.opponent.Destruction))
	}

	switch w.State {
	case StateInWar:
		switch {
		case result > 0:
			return "winning"
		case result < 0:
			return "losing"
		}
		return "tied"
	case StateWarEnded:
		switch {
		case result > 0:
			return "won"
		case result < 0:
			return "lost"
		}
		return "tie"
	}
	return ""
}

func deref[T int | float64](v *T) T {
	if v == nil {
		return 0
	}
	return *v
}
