package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/roomcode/internal/models"
	"github.com/thereayou/roomcode/internal/rooms"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Save inserts the room or updates it in place. Postgres assigns the id
// on insert and GORM reads it back via RETURNING.
func (d *Database) Save(ctx context.Context, room *models.Room) error {
	if err := d.db.WithContext(ctx).Save(room).Error; err != nil {
		return fmt.Errorf("database: save room (code %s): %w", room.Code, err)
	}
	return nil
}

func (d *Database) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).Preload("Members").Where("code = ?", code).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rooms.ErrNotFound
		}
		return nil, fmt.Errorf("database: find room by code %s: %w", code, err)
	}
	return &room, nil
}

func (d *Database) FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).Preload("Members").First(&room, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rooms.ErrNotFound
		}
		return nil, fmt.Errorf("database: find room by id %s: %w", id, err)
	}
	return &room, nil
}

func (d *Database) FindAll(ctx context.Context) ([]models.Room, error) {
	var list []models.Room
	if err := d.db.WithContext(ctx).Preload("Members").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("database: find all rooms: %w", err)
	}
	return list, nil
}

// DeleteByID removes the room and its membership rows in one transaction.
func (d *Database) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RoomMember{}, "room_id = ?", id).Error; err != nil {
			return fmt.Errorf("database: delete room members: %w", err)
		}

		res := tx.Delete(&models.Room{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("database: delete room %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return rooms.ErrNotFound
		}
		return nil
	})
}

// AddMember inserts a membership row. ON CONFLICT DO NOTHING makes the
// insert idempotent and safe under concurrent joins to the same room.
func (d *Database) AddMember(ctx context.Context, roomID uuid.UUID, memberID string) error {
	member := models.RoomMember{
		RoomID:   roomID,
		MemberID: memberID,
		JoinedAt: time.Now(),
	}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	if err != nil {
		return fmt.Errorf("database: add member %s to room %s: %w", memberID, roomID, err)
	}
	return nil
}
