package form

import "fmt"

type ProblemKind string

const (
	ProblemMissingOwner  ProblemKind = "missing-owner"
	ProblemMissingTarget ProblemKind = "missing-target"
	ProblemMissingVar    ProblemKind = "missing-var"
	ProblemBackwardJump  ProblemKind = "backward-jump"
	ProblemUntagged      ProblemKind = "untagged"
)

// Problem is one finding of a diagnostic pass over a definition.
type Problem struct {
	Kind   ProblemKind
	Ref    string
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s: %s", p.Kind, p.Ref, p.Detail)
}

// Validate checks that every rule, jump target and field operand refers to an
// existing field.
func Validate(d *Definition) []Problem {
	idx := d.FieldIndex()
	var problems []Problem
	for _, r := range d.Logic {
		if r.Type == TargetField {
			if _, ok := idx[r.Ref]; !ok {
				problems = append(problems, Problem{Kind: ProblemMissingOwner, Ref: r.Ref, Detail: "rule owner is not a field"})
			}
		}
		for _, a := range r.Actions {
			if to := a.Details.To; to != nil && to.Type == TargetField {
				if _, ok := idx[to.Value]; !ok {
					problems = append(problems, Problem{
						Kind: ProblemMissingTarget, Ref: r.Ref,
						Detail: fmt.Sprintf("jump to unknown field %s", to.Value),
					})
				}
			}
			problems = append(problems, missingVars(r.Ref, a.Condition.Vars, idx)...)
		}
	}
	return problems
}

func missingVars(owner string, vars []Var, idx map[string]int) []Problem {
	var problems []Problem
	for _, v := range vars {
		if v.Type == TargetField {
			ref, _ := v.Text()
			if _, ok := idx[ref]; !ok {
				problems = append(problems, Problem{
					Kind: ProblemMissingVar, Ref: owner,
					Detail: fmt.Sprintf("condition tests unknown field %s", ref),
				})
			}
		}
		problems = append(problems, missingVars(owner, v.Vars, idx)...)
	}
	return problems
}

// CheckForward reports every jump whose target field is not placed strictly
// after the field that owns the rule. Rules or targets that are missing
// altogether are left to Validate.
func CheckForward(d *Definition) []Problem {
	idx := d.FieldIndex()
	var problems []Problem
	for _, r := range d.Logic {
		owner, ok := idx[r.Ref]
		if !ok {
			continue
		}
		for _, a := range r.Actions {
			to := a.Details.To
			if to == nil || to.Type != TargetField {
				continue
			}
			target, ok := idx[to.Value]
			if !ok || target > owner {
				continue
			}
			problems = append(problems, Problem{
				Kind: ProblemBackwardJump, Ref: r.Ref,
				Detail: fmt.Sprintf("jump from position %d to %s at position %d", owner, to.Value, target),
			})
		}
	}
	return problems
}
