package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"metadactyl/internal/entities"
)

const genomeColumns = `id, name, path, deleted, created_by, created_on`

// SaveReferenceGenome inserts or updates a reference genome.
func (s *Store) SaveReferenceGenome(ctx context.Context, g *entities.ReferenceGenome) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedOn.IsZero() {
		g.CreatedOn = time.Now().UTC()
	}
	_, err := s.namedExec(ctx, `
		INSERT INTO genome_reference (`+genomeColumns+`)
		VALUES (:id, :name, :path, :deleted, :created_by, :created_on)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			path = EXCLUDED.path,
			deleted = EXCLUDED.deleted`, g)
	if err != nil {
		return fmt.Errorf("failed to save reference genome %s: %w", g.Name, err)
	}
	return nil
}

// FindReferenceGenomeByID returns the reference genome with the given UUID.
func (s *Store) FindReferenceGenomeByID(ctx context.Context, id string) (*entities.ReferenceGenome, error) {
	var g entities.ReferenceGenome
	err := s.get(ctx, &g, `SELECT `+genomeColumns+` FROM genome_reference WHERE id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: reference genome %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reference genome: %w", err)
	}
	return &g, nil
}

// FindAllReferenceGenomes lists reference genomes by name, including deleted ones.
func (s *Store) FindAllReferenceGenomes(ctx context.Context) ([]entities.ReferenceGenome, error) {
	var genomes []entities.ReferenceGenome
	if err := s.sel(ctx, &genomes, `SELECT `+genomeColumns+` FROM genome_reference ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list reference genomes: %w", err)
	}
	return genomes, nil
}
