package compiler

import "fmt"

// Stage is a step of a compilation
type Stage int

const (
	StageInit Stage = iota
	StageLoad
	StageResolve
	StageGenerate
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Initialization"
	case StageLoad:
		return "Loading"
	case StageResolve:
		return "Type Checking"
	case StageGenerate:
		return "Code Generation"
	case StageComplete:
		return "Compilation Complete"
	default:
		return fmt.Sprintf("Unknown Stage %d", s)
	}
}

// pipeline tracks the current stage and rejects out of order transitions
type pipeline struct {
	current Stage
	history []Stage
	logf    func(format string, args ...any)
}

func newPipeline(logf func(format string, args ...any)) *pipeline {
	return &pipeline{current: StageInit, history: []Stage{StageInit}, logf: logf}
}

// advanceTo moves to the next stage. Stages cannot be skipped or repeated.
func (p *pipeline) advanceTo(stage Stage) {
	if stage != p.current+1 {
		panic(fmt.Sprintf("invalid compilation stage transition: %s -> %s (history %v)", p.current, stage, p.history))
	}
	p.current = stage
	p.history = append(p.history, stage)
	if p.logf != nil {
		p.logf("stage: %s", stage)
	}
}

// Current returns the stage the pipeline is in
func (p *pipeline) Current() Stage {
	return p.current
}
