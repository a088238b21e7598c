package domain

// Client is the opaque handle a war was fetched with. It is carried along
// to every attack but never called here.
type Client any

// Attack is one logged attack. Numeric fields are zero when the feed omits
// them. An attacker hits a given defender at most once per war, so
// (AttackerTag, DefenderTag) identifies an attack within its war.
type Attack struct {
	AttackerTag string
	DefenderTag string
	Stars       int
	Destruction float64
	Order       int
	Duration    int

	war    *War
	client Client
}

// NewAttack builds an attack belonging to war from a raw attack object.
func NewAttack(data any, client Client, war *War) (*Attack, error) {
	rec, err := AsRecord(data)
	if err != nil {
		return nil, err
	}
	return newAttack(rec, client, war), nil
}

func newAttack(data Record, client Client, war *War) *Attack {
	a := &Attack{
		AttackerTag: data.String("attackerTag"),
		DefenderTag: data.String("defenderTag"),
		war:         war,
		client:      client,
	}
	if v := data.Int("stars"); v != nil {
		a.Stars = *v
	}
	if v := data.Float("destructionPercentage"); v != nil {
		a.Destruction = *v
	}
	if v := data.Int("order"); v != nil {
		a.Order = *v
	}
	if v := data.Int("duration"); v != nil {
		a.Duration = *v
	}
	return a
}

func (a *Attack) War() *War {
	return a.war
}

func (a *Attack) Client() Client {
	return a.client
}

// Attacker resolves the attacking member through the owning war.
func (a *Attack) Attacker() *WarMember {
	if a.war == nil {
		return nil
	}
	return a.war.Member(a.AttackerTag)
}

// Defender resolves the defending member through the owning war.
func (a *Attack) Defender() *WarMember {
	if a.war == nil {
		return nil
	}
	return a.war.Member(a.DefenderTag)
}

// IsFresh reports whether this was the first attack on its defender.
func (a *Attack) IsFresh() bool {
	if a.war == nil {
		return false
	}
	defenses := a.war.GetDefenses(a.DefenderTag)
	if len(defenses) == 0 {
		return false
	}
	first := defenses[0]
	return first.AttackerTag == a.AttackerTag && first.Order == a.Order
}
