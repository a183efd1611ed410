package doctor

import (
	"context"
	"os/exec"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// ToolsCheck verifies that the command used to open notification links is
// available on $PATH.
type ToolsCheck struct {
	opener string
}

// NewToolsCheck creates a new tools check for the given opener command.
func NewToolsCheck(opener string) *ToolsCheck {
	return &ToolsCheck{opener: opener}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	// Links can still be copied from the dropdown without an opener.
	if path, err := lookPathFunc(c.opener); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.opener,
			Status: StatusWarn,
			Detail: "not found on PATH (required to open notification links)",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  c.opener,
			Status: StatusPass,
			Detail: path,
		})
	}

	return result
}
