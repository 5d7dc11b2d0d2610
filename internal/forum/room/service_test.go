// Copyright (c) 2026 Backalley. All rights reserved.

package room_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/forum/room"
	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/dberr"
)

type fakeRooms struct {
	rooms []*room.Room
}

func (f *fakeRooms) List(_ context.Context) ([]*room.Room, error) {
	return f.rooms, nil
}

func (f *fakeRooms) FindByName(_ context.Context, name string) (*room.Room, error) {
	for _, existing := range f.rooms {
		if existing.Name == name {
			return existing, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRooms) Create(_ context.Context, created *room.Room) error {
	for _, existing := range f.rooms {
		if existing.Name == created.Name {
			return dberr.ErrDuplicate
		}
	}
	f.rooms = append(f.rooms, created)
	return nil
}

/*
TestService_Create covers creation and the duplicate-name conflict.
*/
func TestService_Create(t *testing.T) {
	ctx := context.Background()
	service := room.NewService(&fakeRooms{})

	created, err := service.Create(ctx, "author-a", "den")
	require.NoError(t, err)
	assert.Equal(t, "den", created.Name)
	assert.Equal(t, "author-a", created.CreatedBy)
	assert.NotEmpty(t, created.ID)

	_, err = service.Create(ctx, "author-b", "den")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestService_FindByName maps a missing room to NOT_FOUND.
*/
func TestService_FindByName(t *testing.T) {
	ctx := context.Background()
	service := room.NewService(&fakeRooms{})

	_, err := service.FindByName(ctx, "nowhere")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}
