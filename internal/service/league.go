package service

import (
	"context"
	"fmt"

	"coc-war-tracker/internal/domain"
	"coc-war-tracker/internal/payload"

	"github.com/rs/zerolog"
)

type LeagueService struct {
	logger zerolog.Logger
}

func NewLeagueService(logger zerolog.Logger) *LeagueService {
	return &LeagueService{logger: logger}
}

func (s *LeagueService) LoadGroup(ctx context.Context, path string) (*domain.LeagueGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := payload.ReadFile(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to read league group")
		return nil, err
	}

	group, err := domain.NewLeagueGroup(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("malformed league group")
		return nil, fmt.Errorf("failed to build league group: %w", err)
	}

	s.logger.Info().
		Str("season", group.Season).
		Str("state", group.State).
		Int("clans", len(group.Clans)).
		Int("wars", len(group.WarTags())).
		Msg("league group loaded")

	return group, nil
}

// Roster returns the master roster of one clan in the group.
func (s *LeagueService) Roster(group *domain.LeagueGroup, clanTag string) ([]*domain.WarLeagueMember, bool) {
	c := group.Clan(clanTag)
	if c == nil {
		return nil, false
	}
	return c.Members, true
}
