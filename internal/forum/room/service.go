// Copyright (c) 2026 Backalley. All rights reserved.

package room

import (
	"context"
	"errors"
	"time"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/dberr"
	"github.com/backalley/backalley/pkg/uuidv7"
)

// Service implements room use cases.
type Service struct {
	rooms Repository
}

// NewService constructs the room [Service].
func NewService(rooms Repository) *Service {
	return &Service{rooms: rooms}
}

// List returns all rooms, newest first.
func (service *Service) List(ctx context.Context) ([]*Room, error) {
	return service.rooms.List(ctx)
}

// FindByName resolves a room by the name used in post URLs.
func (service *Service) FindByName(ctx context.Context, name string) (*Room, error) {
	room, err := service.rooms.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Room")
		}
		return nil, err
	}
	return room, nil
}

// Create opens a new room owned by the given author.
func (service *Service) Create(ctx context.Context, authorID, name string) (*Room, error) {
	room := &Room{
		ID:        uuidv7.Must(),
		Name:      name,
		CreatedBy: authorID,
		CreatedAt: time.Now().UTC(),
	}

	if err := service.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Room already exists")
		}
		return nil, err
	}

	return room, nil
}
