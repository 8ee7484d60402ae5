package skills

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		skill Skill
		want  Bucket
	}{
		{name: "programming", skill: Skill{Name: "Python Programming"}, want: BucketTechnical},
		{name: "software development", skill: Skill{Name: "Python Software Development"}, want: BucketTechnical},
		{name: "case insensitive", skill: Skill{Name: "KUBERNETES"}, want: BucketTechnical},
		{name: "management", skill: Skill{Name: "Project Management"}, want: BucketManagement},
		{name: "procurement before management", skill: Skill{Name: "Procurement Management"}, want: BucketProcurement},
		{name: "soft skill", skill: Skill{Name: "Written communication"}, want: BucketSoftSkills},
		{name: "soft skill phrase before management", skill: Skill{Name: "Time Management"}, want: BucketSoftSkills},
		{name: "stress management", skill: Skill{Name: "Stress management under deadlines"}, want: BucketSoftSkills},
		{name: "certification", skill: Skill{Name: "PMP certified"}, want: BucketCertifications},
		{name: "language", skill: Skill{Name: "Business English"}, want: BucketLanguages},
		{name: "domain via domains", skill: Skill{Name: "IFRS", Domains: []string{"Accounting"}}, want: BucketDomainKnowledge},
		{name: "description match", skill: Skill{Name: "Tableau", Description: "Dashboards and analytics for sales"}, want: BucketTechnical},
		{name: "short keyword needs word boundary", skill: Skill{Name: "Employment laws"}, want: BucketOther},
		{name: "short keyword matches word", skill: Skill{Name: "AWS"}, want: BucketTechnical},
		{name: "fallback", skill: Skill{Name: "Forklift operation"}, want: BucketOther},
		{name: "empty", skill: Skill{}, want: BucketOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Categorize(tt.skill); got != tt.want {
				t.Fatalf("Categorize(%+v) = %q, want %q", tt.skill, got, tt.want)
			}
		})
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	inputs := []string{"", " ", "???", "Python", "日本語", strings.Repeat("x", 500), "Vendor Management"}
	for _, in := range inputs {
		b := Categorize(Skill{Name: in, Description: in})
		if !b.Valid() {
			t.Fatalf("Categorize(%q) returned unknown bucket %q", in, b)
		}
	}
}

func TestCategorizeAllPreservesOrder(t *testing.T) {
	list := []Skill{
		{Name: "Golang"},
		{Name: "Team leadership"},
		{Name: "SQL"},
		{Name: "Docker"},
		{Name: "Basket weaving"},
	}

	got := CategorizeAll(list)

	technical := Names(got[BucketTechnical])
	if strings.Join(technical, ",") != "Golang,SQL,Docker" {
		t.Fatalf("unexpected technical order: %v", technical)
	}
	if len(got[BucketManagement]) != 1 || len(got[BucketOther]) != 1 {
		t.Fatalf("unexpected partition: %+v", got)
	}

	total := 0
	for _, group := range got {
		total += len(group)
	}
	if total != len(list) {
		t.Fatalf("expected every skill in exactly one bucket, got %d of %d", total, len(list))
	}
}

func TestRelevance(t *testing.T) {
	score, ok := Relevance(BucketTechnical, []string{"Python Software Development", "Gardening"})
	if !ok {
		t.Fatalf("expected relevance to be available")
	}
	if score != 0.5 {
		t.Fatalf("expected 0.5, got %v", score)
	}

	// Keywords from every row of a bucket count.
	if score, _ := Relevance(BucketSoftSkills, []string{"Time Management", "Teamwork"}); score != 1 {
		t.Fatalf("expected 1 for soft skills, got %v", score)
	}

	if _, ok := Relevance(BucketOther, []string{"anything"}); ok {
		t.Fatalf("expected no relevance signal for the fallback bucket")
	}

	if _, ok := Relevance(BucketTechnical, nil); ok {
		t.Fatalf("expected no relevance signal for empty names")
	}
}

func TestSkillWeight(t *testing.T) {
	if (Skill{}).Weight() != 1 {
		t.Fatalf("expected default weight 1")
	}
	if (Skill{Importance: 2.5}).Weight() != 2.5 {
		t.Fatalf("expected explicit importance to be used")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "job.json")
	doc := `{"title": "Backend engineer", "context": "Build services", "skills": [
		{"name": "Python Programming", "domains": ["software"]},
		{"name": "Stakeholder management", "importance": 2}
	]}`
	if err := os.WriteFile(valid, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := LoadFile(valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Title != "Backend engineer" || src.Context != "Build services" {
		t.Fatalf("unexpected header: %+v", src)
	}
	if len(src.Skills) != 2 || src.Skills[1].Importance != 2 {
		t.Fatalf("unexpected skills: %+v", src.Skills)
	}

	invalid := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(invalid, []byte(`{"skills": [{"name": ""}, {"domains": "x"}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = LoadFile(invalid)
	if !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
