package services

import (
	"errors"

	"communityapp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakUpdate carries the streak fields that must land in the same write
// as the points increment so a crash between them cannot leave the member
// half-updated.
type StreakUpdate struct {
	Current int
	Longest int
}

// ApplyScore credits points to a member and to the member's per-module
// progress row. All counter mutations are expressed as field-level SQL
// increments, never read-modify-write, so two concurrent completions for
// different members of the same community cannot lose each other's
// updates. Callers that need per-member serialization (the recording
// path) run this inside a transaction that already holds the member row
// FOR UPDATE.
func ApplyScore(tx *gorm.DB, communityID, userID, moduleID string, points int, streak *StreakUpdate) (*models.CommunityMember, error) {
	var member models.CommunityMember
	err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "community member"}
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"points": gorm.Expr("points + ?", points),
	}
	if streak != nil {
		updates["current_streak"] = streak.Current
		// longest_streak is monotone regardless of what the caller computed
		updates["longest_streak"] = gorm.Expr("GREATEST(longest_streak, ?)", streak.Longest)
	}
	if err := tx.Model(&models.CommunityMember{}).Where("id = ?", member.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	res := tx.Model(&models.ModuleProgress{}).
		Where("member_id = ? AND module_id = ?", member.ID, moduleID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		progress := models.ModuleProgress{
			MemberID:    member.ID,
			ModuleID:    moduleID,
			TotalPoints: int64(points),
		}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("id = ?", member.ID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// lockMember loads the member row FOR UPDATE, serializing concurrent
// completions for the same (community, user) pair for the remainder of
// the transaction.
func lockMember(tx *gorm.DB, communityID, userID string) (*models.CommunityMember, error) {
	var member models.CommunityMember
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "community member"}
		}
		return nil, err
	}
	return &member, nil
}
