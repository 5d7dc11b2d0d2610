// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package room manages the community's discussion rooms.

A room is a named container for posts. Creation is open to any authenticated
author; names are unique across the forum.
*/
package room

import (
	"context"
	"time"
)

// Room is a named container for forum posts.
type Room struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// Name is the unique, caller-visible room name.
	Name string `json:"name"`

	// CreatedBy is the ID of the author who opened the room.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// NameMaxLength bounds room names.
const NameMaxLength = 64

// Repository defines persistence operations for rooms.
type Repository interface {
	// List returns all rooms, newest first.
	List(ctx context.Context) ([]*Room, error)

	// FindByName retrieves a room by its unique name.
	FindByName(ctx context.Context, name string) (*Room, error)

	// Create persists a new room. Duplicate names surface as a conflict.
	Create(ctx context.Context, room *Room) error
}
