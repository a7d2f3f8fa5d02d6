package repository

import (
	"context"

	"vetclinic-portal/internal/domain/entity"
)

// PetRepository reads the roster of the caller identified by token.
type PetRepository interface {
	ListPets(ctx context.Context, token string) ([]entity.Pet, error)
}
