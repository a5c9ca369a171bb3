package domain

import "math"

// SubstageProgress is the completion value of the sub-stage's status.
func SubstageProgress(s *Substage) float64 {
	return s.status.Completion()
}

// StageProgress is the mean completion of the stage's sub-stages, or the
// stage's own completion when it has none.
func StageProgress(stage *Stage) float64 {
	if len(stage.substages) == 0 {
		return stage.status.Completion()
	}
	values := make([]float64, len(stage.substages))
	for i, sub := range stage.substages {
		values[i] = SubstageProgress(sub)
	}
	return mean(values)
}

// BuildingProgress is the mean progress of the building's stages, each
// stage weighted equally regardless of size.
func BuildingProgress(b *Building) float64 {
	if len(b.stages) == 0 {
		return b.status.Completion()
	}
	values := make([]float64, len(b.stages))
	for i, st := range b.stages {
		values[i] = StageProgress(st)
	}
	return mean(values)
}

// ProjectProgress is the mean progress of the project's buildings.
func ProjectProgress(p *Project) float64 {
	values := make([]float64, len(p.buildings))
	for i, b := range p.buildings {
		values[i] = BuildingProgress(b)
	}
	return mean(values)
}

// Percent converts a progress value to a whole percentage in [0, 100].
func Percent(progress float64) int {
	return int(math.Round(math.Max(0, math.Min(1, progress)) * 100))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
