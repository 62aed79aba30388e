package services

// ProgressFunc receives coarse pipeline milestones as a completion
// percentage and a short message. A nil callback is valid.
type ProgressFunc func(percent int, message string)

func notify(p ProgressFunc, percent int, message string) {
	if p != nil {
		p(percent, message)
	}
}
