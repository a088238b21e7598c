package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coc-war-tracker/internal/config"
	"coc-war-tracker/internal/constants"
	"coc-war-tracker/internal/domain"
	"coc-war-tracker/internal/metrics"
	"coc-war-tracker/internal/payload"
	"coc-war-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type WarService struct {
	warRepo *repository.WarRepository
	metrics *metrics.Recorder
	cfg     *config.Config
	logger  zerolog.Logger
}

func NewWarService(warRepo *repository.WarRepository, recorder *metrics.Recorder, cfg *config.Config, logger zerolog.Logger) *WarService {
	return &WarService{warRepo: warRepo, metrics: recorder, cfg: cfg, logger: logger}
}

// ImportFiles builds and archives every payload file. A file that fails
// does not stop the others; the returned reports keep the order of paths
// and are zero for the files that failed.
func (s *WarService) ImportFiles(ctx context.Context, paths []string) ([]Report, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ImportTimeout)
	defer cancel()

	importID := uuid.New().String()
	log := s.logger.With().Str("import_id", importID).Logger()
	ctx = log.WithContext(ctx)

	log.Info().Int("files", len(paths)).Int("workers", s.cfg.ImportWorkers).Msg("import started")
	start := time.Now()

	reports := make([]Report, len(paths))
	errs := make([]error, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ImportWorkers)
	for i, path := range paths {
		g.Go(func() error {
			report, err := s.ImportFile(gCtx, path)
			if err != nil {
				s.metrics.IncFailures()
				errs[i] = fmt.Errorf("failed to import %s: %w", path, err)
				return nil
			}
			reports[i] = *report
			return nil
		})
	}
	_ = g.Wait()

	if err := s.metrics.Flush(); err != nil {
		log.Warn().Err(err).Msg("failed to flush metrics")
	}

	err := errors.Join(errs...)
	log.Info().
		Int("files", len(paths)).
		Bool("failed", err != nil).
		Dur("duration", time.Since(start)).
		Msg("import completed")

	return reports, err
}

// ImportFile decodes one payload, builds the war oriented to the configured
// clan and archives it. Wars built here carry the service as their client
// handle.
func (s *WarService) ImportFile(ctx context.Context, path string) (*Report, error) {
	log := zerolog.Ctx(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = &s.logger
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := payload.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read payload")
		return nil, err
	}

	war, err := domain.NewWarFor(raw, s, s.cfg.ClanTag)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("malformed war payload")
		return nil, fmt.Errorf("failed to build war: %w", err)
	}

	id, err := s.warRepo.Save(ctx, war)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to archive war")
		return nil, err
	}

	s.metrics.ObserveWar(war, time.Since(start))

	report := BuildReport(war)
	report.WarID = id
	report.Source = path

	log.Info().
		Str("war_id", id).
		Str("path", path).
		Str("clan_tag", report.ClanTag).
		Str("opponent_tag", report.OpponentTag).
		Str("state", report.State).
		Int("attacks", report.Attacks).
		Msg("war imported")

	return &report, nil
}

// DefensesOf returns a member's archived defenses across all imported wars.
func (s *WarService) DefensesOf(ctx context.Context, memberTag string, limit int) ([]domain.ArchivedAttack, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	limit = min(limit, constants.MaxHistoryLimit)

	defenses, err := s.warRepo.DefensesOf(ctx, memberTag, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("member_tag", memberTag).Msg("failed to load defenses")
		return nil, fmt.Errorf("failed to load defenses: %w", err)
	}

	s.logger.Debug().Str("member_tag", memberTag).Int("defenses", len(defenses)).Msg("defenses loaded")
	return defenses, nil
}

// History returns the most recently imported wars of a clan.
func (s *WarService) History(ctx context.Context, clanTag string, limit int) ([]domain.WarSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	limit = min(limit, constants.MaxHistoryLimit)

	wars, err := s.warRepo.ListByClan(ctx, clanTag, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("clan_tag", clanTag).Msg("failed to load war history")
		return nil, fmt.Errorf("failed to load war history: %w", err)
	}
	return wars, nil
}
