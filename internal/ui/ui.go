package ui

import "github.com/enn-tee/agentic-job-search/internal/model"

// UI receives progress events from a pipeline run.
type UI interface {
	UpdateStatus(status string)
	UpdateStage(stage model.StageKind, outcome string)
	Log(msg string)
}

type SilentUI struct{}

func (s SilentUI) UpdateStatus(status string)                       {}
func (s SilentUI) UpdateStage(stage model.StageKind, outcome string) {}
func (s SilentUI) Log(msg string)                                   {}
