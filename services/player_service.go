package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/storage"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, opts repositories.ListOptions) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	UploadPlayerPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error)
}

type CreatePlayerInput struct {
	Name          string        `json:"name" validate:"required,max=150"`
	BirthDate     time.Time     `json:"birth_date" validate:"required"`
	Gender        models.Gender `json:"gender" validate:"required,oneof=M F"`
	City          string        `json:"city" validate:"max=100"`
	Country       string        `json:"country" validate:"max=100"`
	AssociationID *int          `json:"association_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdatePlayerInput struct {
	Name          *string        `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	BirthDate     *time.Time     `json:"birth_date,omitempty"`
	Gender        *models.Gender `json:"gender,omitempty" validate:"omitempty,oneof=M F"`
	City          *string        `json:"city,omitempty" validate:"omitempty,max=100"`
	Country       *string        `json:"country,omitempty" validate:"omitempty,max=100"`
	AssociationID *int           `json:"association_id,omitempty" validate:"omitempty,gt=0"`
	// RemoveAssociation clears the association; it wins over AssociationID.
	RemoveAssociation bool `json:"remove_association,omitempty"`
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type playerService struct {
	store    repositories.Store
	uploader storage.FileUploader
	now      Clock
	logger   *slog.Logger
}

// NewPlayerService builds the player service. uploader may be nil, in which case
// photo uploads fail with ErrPhotoStorageDisabled.
func NewPlayerService(store repositories.Store, uploader storage.FileUploader, now Clock, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{store: store, uploader: uploader, now: clockOrDefault(now), logger: logger}
}

func mergePlayer(current models.Player, patch UpdatePlayerInput) models.Player {
	merged := current
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.BirthDate != nil {
		merged.BirthDate = models.DateOnly(*patch.BirthDate)
	}
	if patch.Gender != nil {
		merged.Gender = *patch.Gender
	}
	if patch.City != nil {
		merged.City = strings.TrimSpace(*patch.City)
	}
	if patch.Country != nil {
		merged.Country = strings.TrimSpace(*patch.Country)
	}
	if patch.AssociationID != nil {
		merged.AssociationID = intPtr(*patch.AssociationID)
	}
	if patch.RemoveAssociation {
		merged.AssociationID = nil
	}
	return merged
}

func validatePlayer(ctx context.Context, tx repositories.Store, p models.Player, today time.Time) error {
	if p.Name == "" {
		return &ValidationError{Fields: map[string]string{"name": "is required"}}
	}
	if models.DateOnly(p.BirthDate).After(models.DateOnly(today)) {
		return ErrBirthDateInFuture
	}
	if p.AssociationID != nil {
		if _, err := tx.Associations().GetByID(ctx, *p.AssociationID); err != nil {
			return notFoundOr(err, ErrAssociationNotFound, "failed to check association")
		}
	}
	return nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	player := &models.Player{
		Name:          input.Name,
		BirthDate:     models.DateOnly(input.BirthDate),
		Gender:        input.Gender,
		City:          strings.TrimSpace(input.City),
		Country:       strings.TrimSpace(input.Country),
		AssociationID: input.AssociationID,
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := validatePlayer(ctx, tx, *player, s.now()); err != nil {
			return err
		}
		return translateStoreError(tx.Players().Create(ctx, player))
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.store.Players().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPlayerNotFound, fmt.Sprintf("failed to get player %d", id))
	}
	if player.AssociationID != nil {
		association, err := s.store.Associations().GetByID(ctx, *player.AssociationID)
		if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load association of player %d: %w", id, err)
		}
		player.Association = association
	}
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, opts repositories.ListOptions) ([]*models.Player, error) {
	players, err := s.store.Players().List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	populatePlayerListPhotoURLs(players, s.uploader)
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Player
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Players().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrPlayerNotFound, "failed to load player for update")
		}
		updated = mergePlayer(*current, input)
		if err := validatePlayer(ctx, tx, updated, s.now()); err != nil {
			return err
		}
		return translateStoreError(tx.Players().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	populatePlayerPhotoURL(&updated, s.uploader)
	return &updated, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	player, err := s.store.Players().GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrPlayerNotFound, "failed to load player for delete")
	}
	if err := s.store.Players().Delete(ctx, id); err != nil {
		return translateDeleteError(err, ErrPlayerNotFound)
	}
	if player.PhotoKey != nil && s.uploader != nil {
		s.deletePhoto(ctx, *player.PhotoKey)
	}
	return nil
}

// UploadPlayerPhoto stores a new photo and replaces the previous one.
func (s *playerService) UploadPlayerPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrPhotoStorageDisabled
	}
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPhotoType, contentType)
	}

	player, err := s.store.Players().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPlayerNotFound, "failed to load player for photo upload")
	}

	key := fmt.Sprintf("players/%d/%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload photo for player %d: %w", id, err)
	}

	previous := player.PhotoKey
	player.PhotoKey = stringPtr(key)
	if err := s.store.Players().Update(ctx, player); err != nil {
		s.deletePhoto(ctx, key)
		return nil, notFoundOr(translateStoreError(err), ErrPlayerNotFound, "failed to save photo key")
	}
	if previous != nil && *previous != "" {
		s.deletePhoto(ctx, *previous)
	}

	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) deletePhoto(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete player photo", slog.String("key", key), slog.Any("error", err))
	}
}
