package matching

import "github.com/spigell/skillmatch/internal/skills"

// ComputeWeights assigns every bucket holding job skills a weight proportional
// to the total importance of those skills. Weights sum to 1; a job without
// skills yields an empty map.
func ComputeWeights(jobSkills map[skills.Bucket][]skills.Skill) map[skills.Bucket]float64 {
	totals := make(map[skills.Bucket]float64, len(jobSkills))
	var sum float64

	for bucket, list := range jobSkills {
		var total float64
		for _, s := range list {
			total += s.Weight()
		}
		if total <= 0 {
			continue
		}
		totals[bucket] = total
		sum += total
	}

	weights := make(map[skills.Bucket]float64, len(totals))
	if sum == 0 {
		return weights
	}

	for bucket, total := range totals {
		weights[bucket] = total / sum
	}
	return weights
}
