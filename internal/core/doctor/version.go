package doctor

import (
	"context"

	"github.com/colonyops/herald/internal/updatecheck"
)

// UpdateChecker reports a newer release, or nil when current is latest.
type UpdateChecker interface {
	Check(ctx context.Context, currentVersion string) (*updatecheck.Result, error)
}

// VersionCheck reports the running version and whether an update exists.
type VersionCheck struct {
	version string
	updates UpdateChecker
}

// NewVersionCheck creates a version check. A nil checker only reports the
// running version.
func NewVersionCheck(version string, updates UpdateChecker) *VersionCheck {
	return &VersionCheck{version: version, updates: updates}
}

func (c *VersionCheck) Name() string {
	return "Version"
}

func (c *VersionCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	item := CheckItem{Label: "herald", Status: StatusPass, Detail: c.version}

	if c.updates != nil {
		if res, err := c.updates.Check(ctx, c.version); err == nil && res != nil {
			item.Status = StatusWarn
			item.Detail = res.String()
		}
	}

	result.Items = append(result.Items, item)
	return result
}
