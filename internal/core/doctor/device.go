package doctor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/push"
)

// PermissionReader reads the stored permission without prompting.
type PermissionReader interface {
	Current(ctx context.Context) (permission.State, error)
}

// RegistrationLoader loads durable registration state.
type RegistrationLoader interface {
	Load(ctx context.Context) (push.RegistrationState, error)
}

// DeviceCheck reports the data directory, permission and registration of
// this device. With autofix a missing data directory is created.
type DeviceCheck struct {
	dataDir string
	perm    PermissionReader
	states  RegistrationLoader
	autofix bool
	now     func() time.Time
}

// NewDeviceCheck creates a new device check.
func NewDeviceCheck(dataDir string, perm PermissionReader, states RegistrationLoader, autofix bool) *DeviceCheck {
	return &DeviceCheck{
		dataDir: dataDir,
		perm:    perm,
		states:  states,
		autofix: autofix,
		now:     time.Now,
	}
}

func (c *DeviceCheck) Name() string {
	return "Device"
}

func (c *DeviceCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	result.Items = append(result.Items, c.checkDataDir(), c.checkPermission(ctx))
	result.Items = append(result.Items, c.checkRegistration(ctx)...)
	return result
}

func (c *DeviceCheck) checkDataDir() CheckItem {
	item := CheckItem{Label: "data directory", Detail: c.dataDir}

	if _, err := os.Stat(c.dataDir); os.IsNotExist(err) {
		if !c.autofix {
			item.Status = StatusWarn
			item.Detail = c.dataDir + " does not exist"
			item.Fixable = true
			return item
		}
		if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
			item.Status = StatusFail
			item.Detail = fmt.Sprintf("create %s: %v", c.dataDir, err)
			return item
		}
		item.Detail = "created " + c.dataDir
	}

	item.Status = StatusPass
	return item
}

func (c *DeviceCheck) checkPermission(ctx context.Context) CheckItem {
	item := CheckItem{Label: "permission"}

	st, err := c.perm.Current(ctx)
	if err != nil {
		item.Status = StatusFail
		item.Detail = err.Error()
		return item
	}

	item.Detail = fmt.Sprintf("%s (%s)", st, st.StatusMessage())
	switch st {
	case permission.Granted:
		item.Status = StatusPass
	case permission.Default:
		item.Status = StatusWarn
		item.Detail += "; run 'herald permission request'"
	default:
		item.Status = StatusWarn
	}
	return item
}

func (c *DeviceCheck) checkRegistration(ctx context.Context) []CheckItem {
	st, err := c.states.Load(ctx)
	if err != nil {
		return []CheckItem{{Label: "registration", Status: StatusFail, Detail: err.Error()}}
	}

	items := make([]CheckItem, 0, 2)
	if st.Token == "" {
		items = append(items, CheckItem{Label: "token", Status: StatusWarn, Detail: "no token acquired yet"})
	} else {
		items = append(items, CheckItem{Label: "token", Status: StatusPass, Detail: "present"})
	}

	if st.LastRegisteredAt.IsZero() {
		items = append(items, CheckItem{Label: "registration", Status: StatusWarn, Detail: "never registered"})
	} else {
		ago := c.now().Sub(st.LastRegisteredAt).Truncate(time.Second)
		items = append(items, CheckItem{
			Label:  "registration",
			Status: StatusPass,
			Detail: fmt.Sprintf("last registered %s ago", ago),
		})
	}
	return items
}
