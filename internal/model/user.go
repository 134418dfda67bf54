package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the login identity of exactly one person
type User struct {
	Base
	Email         string     `gorm:"not null;index" json:"email"`
	Password      string     `gorm:"not null" json:"-"`
	PersonID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"person_id"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`

	Person *Person `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"person,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeDelete detaches the role assignments this user handed out so they
// survive the delete; the assigner foreign key never cascades.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		return nil
	}
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&RolUser{}).
		Unscoped().
		Where("assigned_by_user_id = ? AND user_id <> ?", u.ID, u.ID).
		Updates(map[string]interface{}{
			"assigned_by_user_id": nil,
			"updated_at":          tx.NowFunc(),
		}).Error
}
