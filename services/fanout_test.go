package services

import (
	"errors"
	"strings"
	"testing"

	"communityapp/models"
)

func TestCollectFanoutIsolatesFailures(t *testing.T) {
	candidates := []string{"aaaaaaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbbbbbb", "cccccccccccccccccccccccc"}

	result := collectFanout(candidates, func(communityID string) (*CompletionResult, error) {
		if communityID == "bbbbbbbbbbbbbbbbbbbbbbbb" {
			return nil, &ConfigurationError{ModuleID: "m", Difficulty: "hard"}
		}
		return &CompletionResult{Task: models.Task{CommunityID: communityID, Points: 50}}, nil
	})

	if len(result.Tasks) != 2 {
		t.Fatalf("expected 2 recorded tasks, got %d", len(result.Tasks))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].CommunityID != "bbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Fatalf("wrong community reported: %s", result.Failures[0].CommunityID)
	}
	// untouched communities keep their order
	if result.Tasks[0].CommunityID != candidates[0] || result.Tasks[1].CommunityID != candidates[2] {
		t.Fatalf("unexpected task order: %v", result.Tasks)
	}
}

func TestCollectFanoutAllFail(t *testing.T) {
	result := collectFanout([]string{"aaaaaaaaaaaaaaaaaaaaaaaa"}, func(string) (*CompletionResult, error) {
		return nil, &NotFoundError{Resource: "community member"}
	})
	if len(result.Tasks) != 0 || len(result.Failures) != 1 {
		t.Fatalf("expected 0 tasks and 1 failure, got %d/%d", len(result.Tasks), len(result.Failures))
	}
}

func TestCollectFanoutHidesStorageErrors(t *testing.T) {
	result := collectFanout([]string{"aaaaaaaaaaaaaaaaaaaaaaaa"}, func(string) (*CompletionResult, error) {
		return nil, errors.New("dial tcp 10.0.0.1:3306: connection refused")
	})
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if reason := result.Failures[0].Reason; strings.Contains(reason, "10.0.0.1") || reason != "internal error" {
		t.Fatalf("storage detail leaked into the failure reason: %q", reason)
	}
	// taxonomy errors keep their intentional message
	result = collectFanout([]string{"aaaaaaaaaaaaaaaaaaaaaaaa"}, func(string) (*CompletionResult, error) {
		return nil, &ConfigurationError{ModuleID: "m", Difficulty: "hard"}
	})
	if reason := result.Failures[0].Reason; !strings.Contains(reason, "hard") {
		t.Fatalf("expected the configuration message to pass through, got %q", reason)
	}
}

func TestCollectFanoutIncludesRepeats(t *testing.T) {
	// an already-recorded day is a success from the caller's point of view
	result := collectFanout([]string{"aaaaaaaaaaaaaaaaaaaaaaaa"}, func(communityID string) (*CompletionResult, error) {
		return &CompletionResult{Task: models.Task{CommunityID: communityID, Points: 50}, Repeat: true}, nil
	})
	if len(result.Tasks) != 1 {
		t.Fatalf("expected repeat task to be returned, got %d tasks", len(result.Tasks))
	}
}
