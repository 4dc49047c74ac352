package services

import (
	"errors"
	"strings"

	"communityapp/models"

	"gorm.io/gorm"
)

// difficulties is the label vocabulary recognized in task metadata. A tag
// outside this list is plain metadata and never consults the points
// scheme.
var difficulties = []string{"easy", "medium", "hard"}

// DifficultyFromTags returns the first metadata tag that is a known
// difficulty label, lowercased. ok is false when the task carries no
// difficulty classification at all; such a task is still recorded but
// earns zero base points.
func DifficultyFromTags(tags []string) (string, bool) {
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		for _, d := range difficulties {
			if t == d {
				return d, true
			}
		}
	}
	return "", false
}

// EffectiveScheme picks the community override when the attachment carries
// one, otherwise the catalog default.
func EffectiveScheme(attachment *models.CommunityModule, module *models.Module) models.PointsScheme {
	if len(attachment.PointsScheme) > 0 {
		return attachment.PointsScheme
	}
	return module.PointsScheme
}

// ResolveBasePoints returns the configured base point value for one
// (community, module, difficulty) triple. The module must be attached to
// the community, and the effective scheme must carry the difficulty key.
func ResolveBasePoints(db *gorm.DB, communityID, moduleID, difficulty string) (int, error) {
	var attachment models.CommunityModule
	err := db.Where("community_id = ? AND module_id = ?", communityID, moduleID).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "module attachment"}
		}
		return 0, err
	}

	var module models.Module
	if err := db.First(&module, "id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "module"}
		}
		return 0, err
	}

	scheme := EffectiveScheme(&attachment, &module)
	points, ok := scheme[difficulty]
	if !ok {
		return 0, &ConfigurationError{ModuleID: moduleID, Difficulty: difficulty}
	}
	if points < 0 {
		return 0, &ConfigurationError{ModuleID: moduleID, Difficulty: difficulty}
	}
	return points, nil
}
