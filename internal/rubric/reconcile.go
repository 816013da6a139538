package rubric

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/fast-scorecard/internal/types"
)

// ErrIntegrity is matched by every IntegrityError via errors.Is.
var ErrIntegrity = errors.New("FAST criterion integrity error")

// IntegrityError reports a score set that is not exactly one score per criterion.
// Both lists are in canonical order.
type IntegrityError struct {
	Missing    []types.Criterion
	Duplicates []types.Criterion
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: missing=[%s] duplicate=[%s]",
		ErrIntegrity.Error(), joinOrNone(e.Missing), joinOrNone(e.Duplicates))
}

// Is makes errors.Is(err, ErrIntegrity) succeed for any IntegrityError.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// Reconcile checks that scores hold exactly one entry per canonical criterion and returns
// them in canonical order. The first occurrence of a repeated criterion wins; repeats are
// reported as duplicates. Identifiers outside the rubric are ignored.
func Reconcile(scores []types.CriterionScore) ([]types.CriterionScore, error) {
	var byCriterion [Count]*types.CriterionScore
	var duplicated [Count]bool

	for i := range scores {
		rank := Rank(scores[i].Criterion)
		if rank < 0 {
			continue
		}
		if byCriterion[rank] != nil {
			duplicated[rank] = true
			continue
		}
		byCriterion[rank] = &scores[i]
	}

	var missing, duplicates []types.Criterion
	for rank, c := range canonical {
		if byCriterion[rank] == nil {
			missing = append(missing, c)
		}
		if duplicated[rank] {
			duplicates = append(duplicates, c)
		}
	}

	if len(missing) > 0 || len(duplicates) > 0 {
		return nil, &IntegrityError{Missing: missing, Duplicates: duplicates}
	}

	ordered := make([]types.CriterionScore, Count)
	for rank, s := range byCriterion {
		ordered[rank] = *s
	}
	return ordered, nil
}

func joinOrNone(list []types.Criterion) string {
	if len(list) == 0 {
		return "none"
	}
	parts := make([]string, len(list))
	for i, c := range list {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
