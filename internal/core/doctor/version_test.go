package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/herald/internal/updatecheck"
)

type fakeUpdates struct {
	result *updatecheck.Result
}

func (f fakeUpdates) Check(context.Context, string) (*updatecheck.Result, error) {
	return f.result, nil
}

func TestVersionCheck(t *testing.T) {
	result := NewVersionCheck("v1.0.0", nil).Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "v1.0.0", result.Items[0].Detail)

	result = NewVersionCheck("v1.0.0", fakeUpdates{}).Run(context.Background())
	assert.Equal(t, StatusPass, result.Items[0].Status)

	newer := &updatecheck.Result{Current: "v1.0.0", Latest: "v1.1.0"}
	result = NewVersionCheck("v1.0.0", fakeUpdates{result: newer}).Run(context.Background())
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "v1.1.0")
}
