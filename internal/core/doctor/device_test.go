package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/push"
)

type fakePermission struct {
	state permission.State
	err   error
}

func (f fakePermission) Current(context.Context) (permission.State, error) {
	return f.state, f.err
}

type fakeRegistration struct {
	state push.RegistrationState
	err   error
}

func (f fakeRegistration) Load(context.Context) (push.RegistrationState, error) {
	return f.state, f.err
}

func itemByLabel(t *testing.T, r Result, label string) CheckItem {
	t.Helper()
	for _, item := range r.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("no item %q in %s", label, r.Name)
	return CheckItem{}
}

func TestDeviceCheck_Registered(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	check := NewDeviceCheck(t.TempDir(),
		fakePermission{state: permission.Granted},
		fakeRegistration{state: push.RegistrationState{Token: "tok", LastRegisteredAt: now.Add(-90 * time.Second)}},
		false,
	)
	check.now = func() time.Time { return now }

	result := check.Run(context.Background())

	assert.Equal(t, "Device", result.Name)
	require.Len(t, result.Items, 4)
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status, item.Label)
	}
	assert.Equal(t, "last registered 1m30s ago", itemByLabel(t, result, "registration").Detail)
}

func TestDeviceCheck_NotYetRequested(t *testing.T) {
	check := NewDeviceCheck(t.TempDir(), fakePermission{state: permission.Default}, fakeRegistration{}, false)

	result := check.Run(context.Background())

	perm := itemByLabel(t, result, "permission")
	assert.Equal(t, StatusWarn, perm.Status)
	assert.Contains(t, perm.Detail, "herald permission request")
	assert.Equal(t, StatusWarn, itemByLabel(t, result, "token").Status)
	assert.Equal(t, StatusWarn, itemByLabel(t, result, "registration").Status)
}

func TestDeviceCheck_LoadErrors(t *testing.T) {
	check := NewDeviceCheck(t.TempDir(),
		fakePermission{err: errors.New("storage offline")},
		fakeRegistration{err: errors.New("storage offline")},
		false,
	)

	result := check.Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusFail, itemByLabel(t, result, "permission").Status)
	assert.Equal(t, StatusFail, itemByLabel(t, result, "registration").Status)
}

func TestDeviceCheck_MissingDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "herald")

	check := NewDeviceCheck(dir, fakePermission{state: permission.Granted}, fakeRegistration{}, false)
	item := itemByLabel(t, check.Run(context.Background()), "data directory")
	assert.Equal(t, StatusWarn, item.Status)
	assert.True(t, item.Fixable)

	check = NewDeviceCheck(dir, fakePermission{state: permission.Granted}, fakeRegistration{}, true)
	item = itemByLabel(t, check.Run(context.Background()), "data directory")
	assert.Equal(t, StatusPass, item.Status)
	assert.Contains(t, item.Detail, "created")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
