package models

import (
	"github.com/google/uuid"
	"time"
)

type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string    `gorm:"size:8;uniqueIndex;not null"`
	CreatorID string    `gorm:"index;not null"`
	CreatedAt time.Time

	Members []RoomMember `gorm:"foreignKey:RoomID"`
}

// RoomMember is one membership row. The composite primary key makes
// membership a set: inserting the same (room, member) pair twice is a no-op.
type RoomMember struct {
	RoomID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID string    `gorm:"size:64;primaryKey"`
	JoinedAt time.Time
}

// MemberIDs returns the ids of everyone who joined the room.
func (r *Room) MemberIDs() []string {
	ids := make([]string, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.MemberID
	}
	return ids
}

// HasMember reports whether id already joined the room.
func (r *Room) HasMember(id string) bool {
	for _, m := range r.Members {
		if m.MemberID == id {
			return true
		}
	}
	return false
}
