package domain

import (
	"time"
)

type WarSnapshot struct {
	ID                   string     `json:"id"` // nanoid
	WarTag               string     `json:"war_tag,omitempty"`
	State                string     `json:"state"`
	Type                 string     `json:"type"` // "cwl", "friendly", "random" or ""
	ClanTag              string     `json:"clan_tag"`
	ClanName             string     `json:"clan_name"`
	OpponentTag          string     `json:"opponent_tag"`
	OpponentName         string     `json:"opponent_name"`
	TeamSize             int        `json:"team_size"`
	PreparationStartTime *time.Time `json:"preparation_start_time,omitempty"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	ImportedAt           time.Time  `json:"imported_at"`
}

type ArchivedMember struct {
	WarID        string `json:"war_id"`
	Tag          string `json:"tag"`
	Name         string `json:"name"`
	ClanTag      string `json:"clan_tag"`
	TownHall     *int   `json:"town_hall,omitempty"`
	MapPosition  *int   `json:"map_position,omitempty"`
	DefenseCount *int   `json:"defense_count,omitempty"`
}

type ArchivedAttack struct {
	WarID       string    `json:"war_id"`
	AttackerTag string    `json:"attacker_tag"`
	DefenderTag string    `json:"defender_tag"`
	Stars       int       `json:"stars"`
	Destruction float64   `json:"destruction"`
	Order       int       `json:"order"`
	Duration    int       `json:"duration"`
	ImportedAt  time.Time `json:"imported_at"`
}

// NewWarSnapshot flattens a built war into its archive row.
func NewWarSnapshot(id string, w *War, importedAt time.Time) WarSnapshot {
	s := WarSnapshot{
		ID:                   id,
		WarTag:               w.WarTag,
		State:                w.State,
		Type:                 w.Type(),
		TeamSize:             deref(w.TeamSize),
		PreparationStartTime: w.PreparationStartTime,
		StartTime:            w.StartTime,
		EndTime:              w.EndTime,
		ImportedAt:           importedAt,
	}
	if c := w.Clan(); c != nil {
		s.ClanTag = c.Tag
		s.ClanName = c.Name
	}
	if o := w.Opponent(); o != nil {
		s.OpponentTag = o.Tag
		s.OpponentName = o.Name
	}
	return s
}
