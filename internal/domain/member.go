package domain

import (
	"fmt"
	"sync"
)

// WarMember is one participant of a war. Scalar fields are nil when the
// feed omits them. Defenses are never stored on the member; they are read
// from the owning war's attack index.
type WarMember struct {
	Tag          string
	Name         string
	TownHall     *int
	MapPosition  *int
	DefenseCount *int

	bestOpponentAttacker string

	war     *War
	clan    *WarClan
	client  Client
	attacks func() []*Attack
}

// NewWarMember builds a member from its raw record. The raw attacks are
// checked for shape here but only turned into Attack values on the first
// call to Attacks.
func NewWarMember(data any, client Client, war *War, clan *WarClan) (*WarMember, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}

	m := &WarMember{
		Tag:          rec.String("tag"),
		Name:         rec.String("name"),
		TownHall:     rec.Int("townhallLevel"),
		MapPosition:  rec.Int("mapPosition"),
		DefenseCount: rec.Int("opponentAttacks"),
		war:          war,
		clan:         clan,
		client:       client,
	}

	rawAttacks, err := rec.Records("attacks")
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", m.Tag, err)
	}
	best, err := rec.Record("bestOpponentAttack")
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", m.Tag, err)
	}
	m.bestOpponentAttacker = best.String("attackerTag")

	m.attacks = sync.OnceValue(func() []*Attack {
		attacks := make([]*Attack, 0, len(rawAttacks))
		for _, raw := range rawAttacks {
			attacks = append(attacks, newAttack(raw, client, war))
		}
		return attacks
	})

	return m, nil
}

func (m *WarMember) War() *War {
	return m.war
}

func (m *WarMember) Clan() *WarClan {
	return m.clan
}

// Attacks returns the member's own attacks in feed order. The result is
// shared between callers and must not be modified.
func (m *WarMember) Attacks() []*Attack {
	if m.attacks == nil {
		return []*Attack{}
	}
	return m.attacks()
}

// BestOpponentAttack returns the best attack made on this base, or nil
// when nobody has attacked it yet.
func (m *WarMember) BestOpponentAttack() *Attack {
	if m.bestOpponentAttacker == "" || m.war == nil {
		return nil
	}
	return m.war.GetAttack(m.bestOpponentAttacker, m.Tag)
}

// Defenses returns every attack in the war made against this member,
// ordered by attack order.
func (m *WarMember) Defenses() []*Attack {
	if m.war == nil {
		return []*Attack{}
	}
	return m.war.GetDefenses(m.Tag)
}

// IsOpponent reports whether the member belongs to the war's opponent
// clan. It is false when either side is unknown or the opponent has no tag.
func (m *WarMember) IsOpponent() bool {
	if m.clan == nil || m.war == nil {
		return false
	}
	opponent := m.war.Opponent()
	if opponent == nil {
		return false
	}
	if m.clan == opponent {
		return true
	}
	return opponent.Tag != "" && m.clan.Tag == opponent.Tag
}

func (m *WarMember) Stars() int {
	total := 0
	for _, a := range m.Attacks() {
		total += a.Stars
	}
	return total
}

// BestDefenseStars is the highest star count any opponent scored on this
// base, zero when undefended.
func (m *WarMember) BestDefenseStars() int {
	best := 0
	for _, a := range m.Defenses() {
		if a.Stars > best {
			best = a.Stars
		}
	}
	return best
}
