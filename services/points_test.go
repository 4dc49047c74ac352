package services

import (
	"testing"

	"communityapp/models"
)

func TestDifficultyFromTags(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want string
		ok   bool
	}{
		{"plain difficulty", []string{"easy"}, "easy", true},
		{"difficulty among other tags", []string{"arrays", "medium", "two-pointers"}, "medium", true},
		{"case insensitive", []string{"Hard"}, "hard", true},
		{"whitespace tolerated", []string{" easy "}, "easy", true},
		{"first match wins", []string{"hard", "easy"}, "hard", true},
		{"no difficulty tag", []string{"arrays", "dp"}, "", false},
		{"empty metadata", nil, "", false},
	}
	for _, c := range cases {
		got, ok := DifficultyFromTags(c.tags)
		if got != c.want || ok != c.ok {
			t.Errorf("%s: DifficultyFromTags(%v) = (%q, %v), want (%q, %v)",
				c.name, c.tags, got, ok, c.want, c.ok)
		}
	}
}

func TestEffectiveSchemeOverride(t *testing.T) {
	module := &models.Module{PointsScheme: models.PointsScheme{"easy": 50, "medium": 100, "hard": 150}}

	attachment := &models.CommunityModule{PointsScheme: models.PointsScheme{"easy": 10, "medium": 20, "hard": 30}}
	scheme := EffectiveScheme(attachment, module)
	if scheme["medium"] != 20 {
		t.Fatalf("expected community override to win, got %v", scheme)
	}

	bare := &models.CommunityModule{}
	scheme = EffectiveScheme(bare, module)
	if scheme["medium"] != 100 {
		t.Fatalf("expected catalog default, got %v", scheme)
	}
}
