package repository

import (
	"context"

	"student-loan-sim/domain"
)

type RunRepository interface {
	Save(ctx context.Context, record domain.RunRecord) error
	FindByID(ctx context.Context, id string) (domain.RunRecord, bool, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
