package services

import (
	"errors"
	"log"
	"time"

	"communityapp/models"

	"gorm.io/gorm"
)

// CompletionInput is one inbound task-completion event for a single
// community. Identifiers are assumed validated by the handler layer.
type CompletionInput struct {
	UserID      string
	CommunityID string
	ModuleID    string
	Description string
	Metadata    []string
}

// CompletionResult is what the recorder hands back. When Repeat is true
// the member already completed a task in this community today; Task is
// that day's first task and nothing was mutated.
type CompletionResult struct {
	Task   models.Task
	Repeat bool
}

// completionStore is the locked view of one member's state inside the
// recording transaction. The gorm implementation below holds the member
// row FOR UPDATE for its whole lifetime.
type completionStore interface {
	Member() (*models.CommunityMember, error)
	TaskOnOrAfter(start time.Time) (*models.Task, error)
	LastTaskBefore(start time.Time) (*models.Task, error)
	Credit(points int, streak StreakUpdate) error
	CreateTask(task *models.Task) error
}

// recordLocked is the recording chain proper: day idempotence, streak
// evaluation, credit, then the Task insert. The credit runs before the
// insert so a failed credit never leaves an orphan ledger row.
func recordLocked(store completionStore, in CompletionInput, community *models.Community, basePoints int, now time.Time) (*CompletionResult, error) {
	member, err := store.Member()
	if err != nil {
		return nil, err
	}

	startOfToday := StartOfDay(now)

	// day idempotence: the first completion of the day determines the
	// day's points, later ones return it untouched
	todays, err := store.TaskOnOrAfter(startOfToday)
	if err != nil {
		return nil, err
	}
	if todays != nil {
		return &CompletionResult{Task: *todays, Repeat: true}, nil
	}

	prior, err := store.LastTaskBefore(startOfToday)
	if err != nil {
		return nil, err
	}
	var lastCompleted *time.Time
	if prior != nil {
		t := prior.CompletedAt
		lastCompleted = &t
	}

	streak := NextStreak(lastCompleted, member.CurrentStreak, now)
	longest := member.LongestStreak
	if streak > longest {
		longest = streak
	}
	finalPoints := FinalPoints(basePoints, streak, community.StreakThreshold, community.StreakMultiplier)

	if err := store.Credit(finalPoints, StreakUpdate{Current: streak, Longest: longest}); err != nil {
		return nil, err
	}

	task := models.Task{
		UserID:      in.UserID,
		CommunityID: in.CommunityID,
		ModuleID:    in.ModuleID,
		Description: in.Description,
		Metadata:    in.Metadata,
		Points:      finalPoints,
		CompletedAt: now.UTC(),
	}
	if err := store.CreateTask(&task); err != nil {
		return nil, err
	}
	return &CompletionResult{Task: task}, nil
}

type txCompletionStore struct {
	tx *gorm.DB
	in CompletionInput
}

func (s *txCompletionStore) Member() (*models.CommunityMember, error) {
	return lockMember(s.tx, s.in.CommunityID, s.in.UserID)
}

func (s *txCompletionStore) TaskOnOrAfter(start time.Time) (*models.Task, error) {
	var task models.Task
	err := s.tx.Where("user_id = ? AND community_id = ? AND completed_at >= ?",
		s.in.UserID, s.in.CommunityID, start).
		Order("completed_at ASC").First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *txCompletionStore) LastTaskBefore(start time.Time) (*models.Task, error) {
	var task models.Task
	err := s.tx.Where("user_id = ? AND community_id = ? AND completed_at < ?",
		s.in.UserID, s.in.CommunityID, start).
		Order("completed_at DESC").First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *txCompletionStore) Credit(points int, streak StreakUpdate) error {
	_, err := ApplyScore(s.tx, s.in.CommunityID, s.in.UserID, s.in.ModuleID, points, &streak)
	return err
}

func (s *txCompletionStore) CreateTask(task *models.Task) error {
	return s.tx.Create(task).Error
}

// RecordCompletion runs the full chain for one community: resolve base
// points, evaluate the streak, create the Task row and credit the member,
// all inside one transaction with the member row locked.
func RecordCompletion(db *gorm.DB, in CompletionInput, now time.Time) (*CompletionResult, error) {
	basePoints := 0
	if difficulty, ok := DifficultyFromTags(in.Metadata); ok {
		points, err := ResolveBasePoints(db, in.CommunityID, in.ModuleID, difficulty)
		if err != nil {
			return nil, err
		}
		basePoints = points
	} else {
		// unclassified work is still recorded, it just earns nothing from
		// the difficulty scheme; the attachment must exist either way
		var count int64
		if err := db.Model(&models.CommunityModule{}).
			Where("community_id = ? AND module_id = ?", in.CommunityID, in.ModuleID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &NotFoundError{Resource: "module attachment"}
		}
	}

	var community models.Community
	if err := db.First(&community, "id = ?", in.CommunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "community"}
		}
		return nil, err
	}

	var result *CompletionResult
	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := recordLocked(&txCompletionStore{tx: tx, in: in}, in, &community, basePoints, now)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err)
	}

	if !result.Repeat {
		log.Printf("[tasks] recorded task %s: user=%s community=%s points=%d",
			result.Task.ID, in.UserID, in.CommunityID, result.Task.Points)
	}
	return result, nil
}
