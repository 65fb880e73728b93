package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	notFoundMessage           = "Usuario no encontrado"
	deactivateDeniedMessage   = "No autorizado para esta acción"
	deleteDeniedMessage       = "No tienes permisos para realizar esta acción"
	deactivatedMessage        = "Usuario desactivado exitosamente"
	permanentlyDeletedMessage = "Usuario y datos relacionados eliminados permanentemente"
)

// Service covers the account operations that follow authentication.
type Service interface {
	List(ctx context.Context, identity access.Identity) ([]UserDTO, error)
	Profile(ctx context.Context, identity access.Identity) (*UserDTO, error)
	UpdateProfile(ctx context.Context, identity access.Identity, req UpdateProfileRequest) (*UserDTO, error)
	Deactivate(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error)
	Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error)
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatar *string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, identity access.Identity) ([]UserDTO, error) {
	if err := access.RequireRole(identity, enums.RoleAdmin); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Profile(ctx context.Context, identity access.Identity) (*UserDTO, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Por favor autentíquese")
	}
	user, err := s.load(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, identity access.Identity, req UpdateProfileRequest) (*UserDTO, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Por favor autentíquese")
	}
	name := strings.TrimSpace(req.Profile.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"profile.name": "is required"})
	}
	avatar := req.Profile.Avatar
	if avatar != nil {
		trimmed := strings.TrimSpace(*avatar)
		if trimmed == "" {
			avatar = nil
		} else {
			avatar = &trimmed
		}
	}

	if err := s.repo.UpdateProfile(ctx, identity.UserID, name, avatar); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return s.Profile(ctx, identity)
}

// Deactivate soft-deletes an account. Missing users are reported before ownership.
func (s *service) Deactivate(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error) {
	if _, err := s.load(ctx, id); err != nil {
		return "", err
	}
	if err := access.RequireSelfOrAdmin(identity, id); err != nil {
		return "", withMessage(err, deactivateDeniedMessage)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user")
	}
	return deactivatedMessage, nil
}

// Delete removes an account permanently. Reviews by the user are not touched.
func (s *service) Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error) {
	if _, err := s.load(ctx, id); err != nil {
		return "", err
	}
	if err := access.RequireSelfOrAdmin(identity, id); err != nil {
		return "", withMessage(err, deleteDeniedMessage)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return permanentlyDeletedMessage, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

// withMessage keeps the code of a forbidden error but swaps in an endpoint-specific message.
func withMessage(err error, message string) error {
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, message)
}
