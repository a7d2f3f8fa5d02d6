package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"vetclinic-portal/internal/domain/entity"
	domainRepo "vetclinic-portal/internal/domain/repository"
)

type petRepository struct {
	client *ClinicAPIClient
}

func NewPetRepository(client *ClinicAPIClient) domainRepo.PetRepository {
	return &petRepository{client: client}
}

// ListPets accepts both {data:{pets:[...]}} and a bare array body.
func (r *petRepository) ListPets(ctx context.Context, token string) ([]entity.Pet, error) {
	raw, err := r.client.doJSON(ctx, "list_pets", http.MethodGet, "/pets", token, nil)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}

	var wrapped struct {
		Data struct {
			Pets []entity.Pet `json:"pets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data.Pets != nil {
		return wrapped.Data.Pets, nil
	}

	var bare []entity.Pet
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	r.client.log.Warnf("Clinic API returned an unrecognized body shape: path=/pets, body=%s", truncateBody(raw))
	return []entity.Pet{}, nil
}
