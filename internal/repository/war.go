package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coc-war-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("not found")

const (
	insertWar = `INSERT INTO wars (
	id, war_tag, state, war_type, clan_tag, clan_name, opponent_tag, opponent_name,
	team_size, preparation_start_time, start_time, end_time, imported_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertMember = `INSERT OR IGNORE INTO war_members (
	war_id, tag, name, clan_tag, town_hall, map_position, defense_count
) VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertAttack = `INSERT OR IGNORE INTO war_attacks (
	war_id, attacker_tag, defender_tag, stars, destruction, attack_order, duration
) VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectWar = `SELECT
	id, war_tag, state, war_type, clan_tag, clan_name, opponent_tag, opponent_name,
	team_size, preparation_start_time, start_time, end_time, imported_at
FROM wars`
)

type WarRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewWarRepository(sqlDB *sql.DB, logger zerolog.Logger) *WarRepository {
	return &WarRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Save archives the war, its members and every attack in one transaction
// and returns the new snapshot id.
func (r *WarRepository) Save(ctx context.Context, war *domain.War) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}
	snapshot := domain.NewWarSnapshot(id, war, time.Now().UTC())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertWar,
		snapshot.ID,
		snapshot.WarTag,
		snapshot.State,
		snapshot.Type,
		snapshot.ClanTag,
		snapshot.ClanName,
		snapshot.OpponentTag,
		snapshot.OpponentName,
		snapshot.TeamSize,
		nullTime(snapshot.PreparationStartTime),
		nullTime(snapshot.StartTime),
		nullTime(snapshot.EndTime),
		snapshot.ImportedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert war: %w", err)
	}

	memberStmt, err := tx.PrepareContext(ctx, insertMember)
	if err != nil {
		return "", fmt.Errorf("failed to prepare member insert: %w", err)
	}
	defer memberStmt.Close()

	for _, m := range war.Members() {
		clanTag := ""
		if c := m.Clan(); c != nil {
			clanTag = c.Tag
		}
		_, err := memberStmt.ExecContext(ctx,
			id, m.Tag, m.Name, clanTag,
			nullInt(m.TownHall), nullInt(m.MapPosition), nullInt(m.DefenseCount),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert member %s: %w", m.Tag, err)
		}
	}

	attackStmt, err := tx.PrepareContext(ctx, insertAttack)
	if err != nil {
		return "", fmt.Errorf("failed to prepare attack insert: %w", err)
	}
	defer attackStmt.Close()

	attacks := war.Attacks()
	for _, a := range attacks {
		_, err := attackStmt.ExecContext(ctx,
			id, a.AttackerTag, a.DefenderTag, a.Stars, a.Destruction, a.Order, a.Duration,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert attack %s->%s: %w", a.AttackerTag, a.DefenderTag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit war: %w", err)
	}

	r.logger.Debug().
		Str("war_id", id).
		Str("clan_tag", snapshot.ClanTag).
		Str("opponent_tag", snapshot.OpponentTag).
		Int("attacks", len(attacks)).
		Msg("war archived")

	return id, nil
}

func (r *WarRepository) Get(ctx context.Context, id string) (*domain.WarSnapshot, error) {
	row := r.db.QueryRowContext(ctx, selectWar+" WHERE id = ?", id)
	snapshot, err := scanWar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("war %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListByClan returns the most recently imported wars the clan fought on
// either side.
func (r *WarRepository) ListByClan(ctx context.Context, clanTag string, limit int) ([]domain.WarSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		selectWar+" WHERE clan_tag = ? OR opponent_tag = ? ORDER BY imported_at DESC, id LIMIT ?",
		clanTag, clanTag, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wars: %w", err)
	}
	defer rows.Close()

	var result []domain.WarSnapshot
	for rows.Next() {
		snapshot, err := scanWar(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *snapshot)
	}
	return result, rows.Err()
}

func (r *WarRepository) MembersOf(ctx context.Context, warID string) ([]domain.ArchivedMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT war_id, tag, name, clan_tag, town_hall, map_position, defense_count
FROM war_members WHERE war_id = ? ORDER BY clan_tag, map_position, tag`, warID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var result []domain.ArchivedMember
	for rows.Next() {
		var (
			m                                   domain.ArchivedMember
			townHall, mapPosition, defenseCount sql.NullInt64
		)
		if err := rows.Scan(&m.WarID, &m.Tag, &m.Name, &m.ClanTag, &townHall, &mapPosition, &defenseCount); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.TownHall = intPtr(townHall)
		m.MapPosition = intPtr(mapPosition)
		m.DefenseCount = intPtr(defenseCount)
		result = append(result, m)
	}
	return result, rows.Err()
}

// DefensesOf returns the archived attacks against memberTag across every
// imported war, earliest war start first and by attack order within a war.
// Wars without a start time fall back to their import time.
func (r *WarRepository) DefensesOf(ctx context.Context, memberTag string, limit int) ([]domain.ArchivedAttack, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.war_id, a.attacker_tag, a.defender_tag, a.stars, a.destruction,
	a.attack_order, a.duration, w.imported_at
FROM war_attacks a
JOIN wars w ON w.id = a.war_id
WHERE a.defender_tag = ?
ORDER BY COALESCE(w.start_time, w.imported_at), a.war_id, a.attack_order
LIMIT ?`, memberTag, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list defenses: %w", err)
	}
	defer rows.Close()

	var result []domain.ArchivedAttack
	for rows.Next() {
		var a domain.ArchivedAttack
		err := rows.Scan(&a.WarID, &a.AttackerTag, &a.DefenderTag, &a.Stars, &a.Destruction,
			&a.Order, &a.Duration, &a.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attack: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWar(row rowScanner) (*domain.WarSnapshot, error) {
	var (
		s                     domain.WarSnapshot
		prepStart, start, end sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.WarTag, &s.State, &s.Type, &s.ClanTag, &s.ClanName, &s.OpponentTag, &s.OpponentName,
		&s.TeamSize, &prepStart, &start, &end, &s.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	s.PreparationStartTime = timePtr(prepStart)
	s.StartTime = timePtr(start)
	s.EndTime = timePtr(end)
	return &s, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
