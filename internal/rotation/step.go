// Package rotation implements the four-step secret rotation protocol of AWS
// Secrets Manager on top of a secretstore.Store and a backend.Propagator.
package rotation

import (
	rerrors "github.com/systmms/credrotate/internal/errors"
)

// Step is one phase of a rotation
type Step int

const (
	StepCreate Step = iota + 1
	StepSet
	StepTest
	StepFinish
)

var stepNames = map[Step]string{
	StepCreate: "createSecret",
	StepSet:    "setSecret",
	StepTest:   "testSecret",
	StepFinish: "finishSecret",
}

// Steps lists every step in protocol order
func Steps() []Step {
	return []Step{StepCreate, StepSet, StepTest, StepFinish}
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "invalid"
}

// ParseStep maps the event's step name onto a Step. Names are case-sensitive.
func ParseStep(name string) (Step, error) {
	for step, stepName := range stepNames {
		if stepName == name {
			return step, nil
		}
	}
	return 0, rerrors.InvalidStepError{Step: name}
}

// Event is a rotation request as delivered by the platform.
type Event struct {
	SecretID           string `json:"SecretId"`
	ClientRequestToken string `json:"ClientRequestToken"`
	Step               string `json:"Step"`
}
