package leveling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

// TraitResult is one trait's share of a distributed XP award.
type TraitResult struct {
	TraitID   uuid.UUID `json:"trait_id"`
	TraitName string    `json:"trait_name"`
	XPAwarded int64     `json:"xp_awarded"`
	Result
}

// Distributor splits a total XP award evenly across the traits tagged on a
// quest, creating per-trait progress records on demand.
type Distributor struct {
	traits repository.TraitRepository
	engine *Engine
}

// NewDistributor creates a trait XP distributor.
func NewDistributor(traits repository.TraitRepository, engine *Engine) *Distributor {
	return &Distributor{traits: traits, engine: engine}
}

// SplitXP returns each trait's share of totalXP: floor(totalXP / n). The
// integer-division remainder is dropped, not redistributed.
func SplitXP(totalXP int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return totalXP / int64(n)
}

// Distribute awards floor(totalXP/len(traits)) to each trait, lazily
// creating progress rows at level 1 / 0 XP. Runs inside the caller's
// transaction; rows are locked per trait before the award. An empty trait
// set is a no-op.
func (d *Distributor) Distribute(ctx context.Context, tx pgx.Tx, characterID uuid.UUID, traits []domain.TraitDefinition, totalXP int64) ([]TraitResult, error) {
	if len(traits) == 0 {
		return nil, nil
	}

	share := SplitXP(totalXP, len(traits))
	results := make([]TraitResult, 0, len(traits))

	for _, trait := range traits {
		progress, err := d.traits.LockProgressForUpdate(ctx, tx, characterID, trait.ID)
		if err != nil {
			return nil, fmt.Errorf("lock trait progress: %w", err)
		}
		if progress == nil {
			progress = &domain.TraitProgress{
				CharacterID:   characterID,
				TraitID:       trait.ID,
				ProgressTrack: domain.ProgressTrack{Level: 1, ExperiencePoints: 0},
			}
			if err := d.traits.CreateProgress(ctx, tx, progress); err != nil {
				return nil, err
			}
		}

		res, err := d.engine.Award(ctx, &progress.ProgressTrack, share)
		if err != nil {
			return nil, fmt.Errorf("award trait xp: %w", err)
		}
		if _, err := d.traits.UpdateProgress(ctx, tx, characterID, trait.ID, progress.ProgressTrack); err != nil {
			return nil, err
		}

		results = append(results, TraitResult{
			TraitID:   trait.ID,
			TraitName: trait.Name,
			XPAwarded: share,
			Result:    res,
		})
	}

	return results, nil
}
