// Package skills holds the skill model shared by both sides of a match and
// the keyword categorizer that partitions skills into buckets.
package skills

import "strings"

// Bucket is a semantic category skills are partitioned into.
type Bucket string

const (
	BucketTechnical       Bucket = "Technical"
	BucketManagement      Bucket = "Management"
	BucketDomainKnowledge Bucket = "Domain Knowledge"
	BucketProcurement     Bucket = "Procurement"
	BucketSoftSkills      Bucket = "Soft Skills"
	BucketCertifications  Bucket = "Certifications"
	BucketLanguages       Bucket = "Languages"
	BucketOther           Bucket = "Other"
)

// Buckets lists every bucket in a stable order. Other is always last.
var Buckets = []Bucket{
	BucketTechnical,
	BucketManagement,
	BucketDomainKnowledge,
	BucketProcurement,
	BucketSoftSkills,
	BucketCertifications,
	BucketLanguages,
	BucketOther,
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	for _, known := range Buckets {
		if b == known {
			return true
		}
	}
	return false
}

func (b Bucket) String() string { return string(b) }

// Skill is a single skill record loaded from a job posting or a candidate profile.
type Skill struct {
	Name        string   `json:"name"`
	Domains     []string `json:"domains,omitempty"`
	Description string   `json:"description,omitempty"`
	// Importance scales the skill's share of its bucket weight. Zero means 1.
	Importance float64 `json:"importance,omitempty"`
}

// Weight returns the effective importance of the skill.
func (s Skill) Weight() float64 {
	if s.Importance <= 0 {
		return 1
	}
	return s.Importance
}

// Names returns the trimmed names of skills in input order.
func Names(list []Skill) []string {
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, strings.TrimSpace(s.Name))
	}
	return names
}
