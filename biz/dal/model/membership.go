package model

import "time"

// Organization roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(64);uniqueIndex:uk_org_user" json:"organization_id"`
	UserID         string    `gorm:"column:user_id;type:varchar(64);uniqueIndex:uk_org_user" json:"user_id"`
	Role           string    `gorm:"column:role;type:varchar(16);default:member" json:"role"`
}

func (OrganizationMember) TableName() string {
	return "organization_member"
}
