// Package progress derives unlock state for a course's skill tree from the
// set of completed lesson IDs. Everything here is a pure function: the
// completed set is owned by the auth store and the tree by the course
// payload, and neither is mutated.
package progress

import "github.com/skrblv/bilimGO/internal/course"

// SkillComplete reports whether every lesson directly owned by the skill is
// in the completed set. Child skills' lessons do not count. A skill with no
// lessons of its own is complete.
func SkillComplete(s course.Skill, completed map[int]bool) bool {
	for _, l := range s.Lessons {
		if !completed[l.ID] {
			return false
		}
	}
	return true
}

// UnlockedSkills computes the set of unlocked skill IDs for a course's root
// skill list. Root skills unlock as a strict prefix: a root is unlocked iff
// every root before it is unlocked and complete, and the first root is
// always unlocked. A child skill is unlocked iff its parent is unlocked and
// the parent's own lessons are all completed.
func UnlockedSkills(roots []course.Skill, completed map[int]bool) map[int]bool {
	unlocked := make(map[int]bool)

	prefixOpen := true
	for _, root := range roots {
		if !prefixOpen {
			break
		}
		unlocked[root.ID] = true
		markChildren(root, completed, unlocked)
		prefixOpen = SkillComplete(root, completed)
	}

	return unlocked
}

func markChildren(parent course.Skill, completed, unlocked map[int]bool) {
	if !SkillComplete(parent, completed) {
		return
	}
	for _, child := range parent.Children {
		unlocked[child.ID] = true
		markChildren(child, completed, unlocked)
	}
}

// LessonInteractive reports whether a lesson can be entered from the tree
// view: it must not already be completed, and its enclosing skill must be
// unlocked. Completed lessons are inert regardless of unlock state.
func LessonInteractive(lessonID, skillID int, completed, unlocked map[int]bool) bool {
	return !completed[lessonID] && unlocked[skillID]
}

// InteractiveLessons returns the IDs of every lesson that can currently be
// entered, walking the whole tree.
func InteractiveLessons(roots []course.Skill, completed map[int]bool) map[int]bool {
	unlocked := UnlockedSkills(roots, completed)
	interactive := make(map[int]bool)
	var walk func(skills []course.Skill)
	walk = func(skills []course.Skill) {
		for _, s := range skills {
			for _, l := range s.Lessons {
				if LessonInteractive(l.ID, s.ID, completed, unlocked) {
					interactive[l.ID] = true
				}
			}
			walk(s.Children)
		}
	}
	walk(roots)
	return interactive
}

// CourseComplete reports whether every lesson in the course, at any depth,
// is completed.
func CourseComplete(roots []course.Skill, completed map[int]bool) bool {
	for _, s := range roots {
		if !subtreeComplete(s, completed) {
			return false
		}
	}
	return true
}

func subtreeComplete(s course.Skill, completed map[int]bool) bool {
	if !SkillComplete(s, completed) {
		return false
	}
	for _, c := range s.Children {
		if !subtreeComplete(c, completed) {
			return false
		}
	}
	return true
}
