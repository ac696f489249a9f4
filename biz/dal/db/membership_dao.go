package db

import (
	"context"
	"errors"

	"github.com/munify/doc_vault/biz/dal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipDAO answers organization membership and role queries.
type MembershipDAO struct{}

func NewMembershipDAO() *MembershipDAO { return &MembershipDAO{} }

// Upsert creates or updates the role of a user in an organization.
func (dao *MembershipDAO) Upsert(ctx context.Context, db *gorm.DB, member *model.OrganizationMember) error {
	if member == nil {
		return errors.New("member must not be nil")
	}
	if member.OrganizationID == "" || member.UserID == "" {
		return errors.New("organization_id and user_id are required")
	}
	if member.Role == "" {
		member.Role = model.RoleMember
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(member).Error
}

// GetRole returns the user's role in the organization, or "" when the user
// is not a member.
func (dao *MembershipDAO) GetRole(ctx context.Context, db *gorm.DB, organizationID, userID string) (string, error) {
	var member model.OrganizationMember
	err := db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// IsMember reports whether the user belongs to the organization in any role.
func (dao *MembershipDAO) IsMember(ctx context.Context, db *gorm.DB, organizationID, userID string) (bool, error) {
	role, err := dao.GetRole(ctx, db, organizationID, userID)
	return role != "", err
}

// IsAdmin reports whether the user administers the organization.
func (dao *MembershipDAO) IsAdmin(ctx context.Context, db *gorm.DB, organizationID, userID string) (bool, error) {
	role, err := dao.GetRole(ctx, db, organizationID, userID)
	return role == model.RoleAdmin, err
}
