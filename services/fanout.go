package services

import (
	"errors"
	"log"
	"time"

	"communityapp/models"

	"gorm.io/gorm"
)

// FanoutFailure names one community that was skipped and why. Siblings
// are never blocked by a single community's failure.
type FanoutFailure struct {
	CommunityID string `json:"community_id"`
	Reason      string `json:"reason"`
}

// FanoutResult collects everything a fan-out produced. Tasks from
// communities where today's completion was already recorded are included
// unchanged (the idempotent short-circuit).
type FanoutResult struct {
	Tasks    []models.Task   `json:"tasks"`
	Failures []FanoutFailure `json:"failures,omitempty"`
}

type recordFn func(communityID string) (*CompletionResult, error)

// failureReason renders an error for the client-facing failure list.
// Taxonomy errors carry safe, intentional messages; anything else is a
// raw storage failure and stays generic.
func failureReason(err error) string {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		configErr     *ConfigurationError
		conflictErr   *ConflictError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &configErr):
		return err.Error()
	case errors.As(err, &conflictErr):
		return "concurrent update, please retry"
	default:
		return "internal error"
	}
}

// collectFanout runs the recorder for every candidate community,
// isolating failures per community.
func collectFanout(candidates []string, record recordFn) *FanoutResult {
	result := &FanoutResult{}
	for _, communityID := range candidates {
		res, err := record(communityID)
		if err != nil {
			result.Failures = append(result.Failures, FanoutFailure{
				CommunityID: communityID,
				Reason:      failureReason(err),
			})
			continue
		}
		result.Tasks = append(result.Tasks, res.Task)
	}
	return result
}

// CandidateCommunities returns the ids of every community where the user
// is a member and the module is attached, in membership arrival order.
func CandidateCommunities(db *gorm.DB, userID, moduleID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.CommunityMember{}).
		Joins("JOIN community_modules ON community_modules.community_id = community_members.community_id").
		Where("community_members.user_id = ? AND community_modules.module_id = ?", userID, moduleID).
		Order("community_members.id ASC").
		Pluck("community_members.community_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FanoutCompletion records one completion event in every community the
// user belongs to that has the module attached. Communities are processed
// independently; each gets its own transaction.
func FanoutCompletion(db *gorm.DB, userID, moduleID, description string, metadata []string, now time.Time) (*FanoutResult, error) {
	candidates, err := CandidateCommunities(db, userID, moduleID)
	if err != nil {
		return nil, err
	}

	result := collectFanout(candidates, func(communityID string) (*CompletionResult, error) {
		return RecordCompletion(db, CompletionInput{
			UserID:      userID,
			CommunityID: communityID,
			ModuleID:    moduleID,
			Description: description,
			Metadata:    metadata,
		}, now)
	})

	for _, f := range result.Failures {
		log.Printf("[tasks] fanout: community %s skipped for user %s: %s", f.CommunityID, userID, f.Reason)
	}
	return result, nil
}
