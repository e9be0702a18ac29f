package services

import (
	"github.com/edupulse/survey-service/internal/models"
)

// visibilityResolver walks the conditional-question tree for one
// evaluation pass. Visibility composes by conjunction up the parent
// chain: a child is live only when its parent is live, answered, and
// the answer matches the child's show condition. Results are memoized
// per pass so a shared ancestor is evaluated once.
type visibilityResolver struct {
	byID     map[uint]*models.Question
	answers  map[uint]models.ResponseValue
	memo     map[uint]bool
	visiting map[uint]bool
}

// ResolveVisibility returns the visible flag for every question in the
// list given the current answers. Pure function; the question list must
// be the survey's full question set.
func ResolveVisibility(questions []*models.Question, answers map[uint]models.ResponseValue) map[uint]bool {
	r := &visibilityResolver{
		byID:     make(map[uint]*models.Question, len(questions)),
		answers:  answers,
		memo:     make(map[uint]bool, len(questions)),
		visiting: make(map[uint]bool),
	}
	for _, q := range questions {
		r.byID[q.ID] = q
	}

	result := make(map[uint]bool, len(questions))
	for _, q := range questions {
		result[q.ID] = r.visible(q.ID)
	}
	return result
}

// VisibleQuestions filters the question list down to the visible set,
// preserving display order.
func VisibleQuestions(questions []*models.Question, answers map[uint]models.ResponseValue) []*models.Question {
	flags := ResolveVisibility(questions, answers)
	visible := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		if flags[q.ID] {
			visible = append(visible, q)
		}
	}
	return visible
}

func (r *visibilityResolver) visible(id uint) bool {
	if v, ok := r.memo[id]; ok {
		return v
	}
	// Definition-time validation rejects cycles; if one slips through,
	// a revisited node is treated as hidden rather than recursing.
	if r.visiting[id] {
		return false
	}
	r.visiting[id] = true
	v := r.compute(id)
	delete(r.visiting, id)
	r.memo[id] = v
	return v
}

func (r *visibilityResolver) compute(id uint) bool {
	q, ok := r.byID[id]
	if !ok {
		return false
	}
	if q.ParentQuestionID == nil {
		return true
	}

	parent, ok := r.byID[*q.ParentQuestionID]
	if !ok {
		// Dangling parent link hides the child.
		return false
	}
	if !r.visible(parent.ID) {
		return false
	}

	answer, ok := r.answers[parent.ID]
	if !ok || !answer.IsAnswered(parent.Type) {
		// An unanswered parent hides the child even if the child is
		// flagged required.
		return false
	}

	cond, err := q.DecodedShowIf()
	if err != nil {
		return false
	}
	if cond == nil {
		// Parent link without a condition: visible once the parent is
		// answered at all.
		return true
	}
	return cond.Matches(answer)
}
