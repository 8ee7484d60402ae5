package skills

import "strings"

type bucketKeywords struct {
	bucket   Bucket
	keywords []string
}

// keywordTable is scanned in order; the first bucket with any keyword found in
// the skill text wins. Specific buckets come before broad ones, and phrases
// containing a broader bucket's keyword come before that bucket's row.
var keywordTable = []bucketKeywords{
	{BucketSoftSkills, []string{
		"time management", "stress management", "self-management", "anger management",
	}},
	{BucketProcurement, []string{
		"procurement", "purchasing", "sourcing", "vendor", "supplier", "tender",
		"rfp", "rfq", "contract negotiation", "supply chain", "category management",
		"spend analysis", "bid evaluation",
	}},
	{BucketManagement, []string{
		"management", "manager", "leadership", "team lead", "strategy", "strategic",
		"planning", "budget", "stakeholder", "portfolio", "program lead", "roadmap",
		"governance", "mentoring", "coaching", "hiring", "okr", "scrum master",
	}},
	{BucketSoftSkills, []string{
		"communication", "teamwork", "collaboration", "presentation", "negotiation",
		"problem solving", "problem-solving", "critical thinking", "adaptability",
		"creativity", "interpersonal", "empathy", "conflict resolution",
		"public speaking", "attention to detail",
	}},
	{BucketCertifications, []string{
		"certified", "certification", "certificate", "pmp", "cissp", "cpa", "prince2",
		" itil ", "ccna", "licensed", "accredited",
	}},
	{BucketTechnical, []string{
		"programming", "software", "developer", "development", "engineering", "python",
		"java", "golang", "javascript", "typescript", "kotlin", "c++", "c#",
		"sql", "database", "cloud", " aws ", "azure", " gcp ", "kubernetes", "docker",
		"devops", "linux", "rest api", "backend", "frontend", "machine learning", "data science",
		"network", "security", "infrastructure", "terraform", "microsoft excel", "erp system", " sap ",
		"automation", "testing", "architecture", "microservices", "analytics",
	}},
	{BucketLanguages, []string{
		"english", "spanish", "german", "french", "russian", "chinese", "mandarin",
		"japanese", "arabic", "portuguese", "italian", "bilingual", "fluency", "native speaker",
	}},
	{BucketDomainKnowledge, []string{
		"finance", "financial", "accounting", "healthcare", "medical", "pharma", "banking",
		"insurance", "legal", "compliance", "regulatory", "logistics", "manufacturing",
		"retail", "energy", "telecom", "real estate", "construction", "public sector",
		"government", "defense", "domain", "industry", "audit",
	}},
}

// Categorize maps a skill to exactly one bucket. Matching is case-insensitive
// substring search over the skill's name, domains and description; skills that
// match nothing land in BucketOther.
func Categorize(skill Skill) Bucket {
	text := skillText(skill)
	if text == "" {
		return BucketOther
	}
	// Padding lets short keywords such as " aws " match at word boundaries.
	text = " " + text + " "

	for _, entry := range keywordTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.bucket
			}
		}
	}

	return BucketOther
}

// CategorizeAll partitions skills by bucket, preserving input order within each bucket.
func CategorizeAll(list []Skill) map[Bucket][]Skill {
	out := make(map[Bucket][]Skill)
	for _, s := range list {
		b := Categorize(s)
		out[b] = append(out[b], s)
	}
	return out
}

// Keywords returns the keyword set of bucket b. BucketOther has none.
func Keywords(b Bucket) []string {
	var out []string
	for _, entry := range keywordTable {
		if entry.bucket == b {
			out = append(out, entry.keywords...)
		}
	}
	return out
}

// Relevance scores how characteristic names are of bucket b: the share of
// names containing at least one of the bucket keywords. ok is false when the
// bucket has no keywords or names is empty.
func Relevance(b Bucket, names []string) (score float64, ok bool) {
	keywords := Keywords(b)
	if len(keywords) == 0 || len(names) == 0 {
		return 0, false
	}

	matched := 0
	for _, name := range names {
		lower := " " + strings.ToLower(strings.TrimSpace(name)) + " "
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(names)), true
}

func skillText(skill Skill) string {
	parts := make([]string, 0, len(skill.Domains)+2)
	if name := strings.TrimSpace(skill.Name); name != "" {
		parts = append(parts, name)
	}
	for _, d := range skill.Domains {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	if desc := strings.TrimSpace(skill.Description); desc != "" {
		parts = append(parts, desc)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
