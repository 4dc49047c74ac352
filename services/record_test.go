package services

import (
	"errors"
	"testing"
	"time"

	"communityapp/models"
)

// memberStore is an in-memory completionStore capturing every call so the
// recording chain's ordering can be asserted without a database.
type memberStore struct {
	member    models.CommunityMember
	today     *models.Task
	prior     *models.Task
	creditErr error

	calls    []string
	credited []StreakUpdate
	points   []int
	created  []models.Task
}

func (s *memberStore) Member() (*models.CommunityMember, error) {
	s.calls = append(s.calls, "member")
	return &s.member, nil
}

func (s *memberStore) TaskOnOrAfter(start time.Time) (*models.Task, error) {
	s.calls = append(s.calls, "today")
	return s.today, nil
}

func (s *memberStore) LastTaskBefore(start time.Time) (*models.Task, error) {
	s.calls = append(s.calls, "prior")
	return s.prior, nil
}

func (s *memberStore) Credit(points int, streak StreakUpdate) error {
	s.calls = append(s.calls, "credit")
	if s.creditErr != nil {
		return s.creditErr
	}
	s.points = append(s.points, points)
	s.credited = append(s.credited, streak)
	return nil
}

func (s *memberStore) CreateTask(task *models.Task) error {
	s.calls = append(s.calls, "create")
	s.created = append(s.created, *task)
	return nil
}

var recordInput = CompletionInput{
	UserID:      "aaaaaaaaaaaaaaaaaaaaaaaa",
	CommunityID: "bbbbbbbbbbbbbbbbbbbbbbbb",
	ModuleID:    "cccccccccccccccccccccccc",
	Description: "solved a problem",
	Metadata:    []string{"hard"},
}

func TestRecordLockedSameDayIsIdempotent(t *testing.T) {
	now := ts("2026-03-10T18:00:00Z")
	first := models.Task{ID: "dddddddddddddddddddddddd", Points: 30, CompletedAt: ts("2026-03-10T08:00:00Z")}
	store := &memberStore{
		member: models.CommunityMember{CurrentStreak: 4, LongestStreak: 9},
		today:  &first,
	}

	res, err := recordLocked(store, recordInput, &models.Community{}, 30, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Repeat {
		t.Fatal("second completion of the day must be flagged as repeat")
	}
	if res.Task.ID != first.ID || res.Task.Points != first.Points {
		t.Fatalf("repeat must return the day's first task, got %+v", res.Task)
	}
	for _, call := range store.calls {
		if call == "credit" || call == "create" {
			t.Fatalf("repeat completion must not mutate anything, saw %v", store.calls)
		}
	}
}

func TestRecordLockedCreditFailureLeavesNoTask(t *testing.T) {
	store := &memberStore{
		member:    models.CommunityMember{CurrentStreak: 2},
		creditErr: errors.New("lock wait timeout"),
	}

	_, err := recordLocked(store, recordInput, &models.Community{}, 10, ts("2026-03-10T18:00:00Z"))
	if err == nil {
		t.Fatal("expected the credit failure to surface")
	}
	if len(store.created) != 0 {
		t.Fatalf("no task row may exist after a failed credit, got %d", len(store.created))
	}
}

func TestRecordLockedCreditsBeforeTaskInsert(t *testing.T) {
	store := &memberStore{member: models.CommunityMember{}}

	_, err := recordLocked(store, recordInput, &models.Community{}, 10, ts("2026-03-10T18:00:00Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	creditAt, createAt := -1, -1
	for i, call := range store.calls {
		switch call {
		case "credit":
			creditAt = i
		case "create":
			createAt = i
		}
	}
	if creditAt == -1 || createAt == -1 || creditAt > createAt {
		t.Fatalf("credit must land before the task insert, calls: %v", store.calls)
	}
}

func TestRecordLockedContinuesStreakAndAppliesBonus(t *testing.T) {
	now := ts("2026-03-10T18:00:00Z")
	yesterday := models.Task{CompletedAt: ts("2026-03-09T20:00:00Z")}
	store := &memberStore{
		member: models.CommunityMember{CurrentStreak: 3, LongestStreak: 3},
		prior:  &yesterday,
	}
	community := &models.Community{StreakThreshold: 3, StreakMultiplier: 1.5}

	res, err := recordLocked(store, recordInput, community, 10, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.credited) != 1 {
		t.Fatalf("expected exactly one credit, got %d", len(store.credited))
	}
	if got := store.credited[0]; got.Current != 4 || got.Longest != 4 {
		t.Fatalf("expected streak 4/4, got %+v", got)
	}
	// 10 base * 1.5 multiplier, streak past threshold
	if store.points[0] != 15 || res.Task.Points != 15 {
		t.Fatalf("expected 15 points, got credit %d task %d", store.points[0], res.Task.Points)
	}
	if !res.Task.CompletedAt.Equal(now.UTC()) {
		t.Fatalf("task must carry the completion time, got %v", res.Task.CompletedAt)
	}
}

func TestRecordLockedResetsAfterGap(t *testing.T) {
	now := ts("2026-03-10T18:00:00Z")
	old := models.Task{CompletedAt: ts("2026-03-05T12:00:00Z")}
	store := &memberStore{
		member: models.CommunityMember{CurrentStreak: 7, LongestStreak: 12},
		prior:  &old,
	}

	_, err := recordLocked(store, recordInput, &models.Community{}, 10, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.credited[0]; got.Current != 1 || got.Longest != 12 {
		t.Fatalf("gap must reset the streak but keep the record, got %+v", got)
	}
}
