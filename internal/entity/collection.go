package entity

import (
	"database/sql"
	"time"
)

type Collection struct {
	Base

	OwnerID string
	Owner   Owner `gorm:"foreignKey:OwnerID"`

	Name             string
	DatePubli        sql.NullTime
	IsOwnerChallenge bool
	IsMainChallenge  bool
}

// IsPublishedAt reports whether the collection is visible to non-privileged
// actors. A null or future-dated publication date means unpublished.
func (c *Collection) IsPublishedAt(now time.Time) bool {
	return c.DatePubli.Valid && !c.DatePubli.Time.After(now)
}
