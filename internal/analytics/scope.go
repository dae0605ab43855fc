package analytics

// Scope restricts a computation to a set of courses. The nil Scope covers
// every course.
type Scope map[int64]struct{}

// ScopeOf builds a scope from the given course IDs.
func ScopeOf(courseIDs ...int64) Scope {
	s := make(Scope, len(courseIDs))
	for _, id := range courseIDs {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether the course falls inside the scope.
func (s Scope) Contains(courseID int64) bool {
	if s == nil {
		return true
	}
	_, ok := s[courseID]
	return ok
}
