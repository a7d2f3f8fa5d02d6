package converter

import (
	"vetclinic-portal/internal/delivery/dto"
	"vetclinic-portal/internal/domain/entity"
	"vetclinic-portal/internal/domain/repository"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func AuthSessionToResponse(session *repository.AuthSession) *dto.AuthResponse {
	if session == nil {
		return nil
	}
	return &dto.AuthResponse{
		Token: session.Token,
		User:  *UserToResponse(&session.User),
	}
}
