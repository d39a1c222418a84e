package identity_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/gps-tracker/internal/mocks"
	"github.com/benmeehan/gps-tracker/pkg/file"
	"github.com/benmeehan/gps-tracker/pkg/identity"
)

func TestLoadDeviceInfo(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "device.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"device_id":"truck-7","device_name":"Truck 7"}`), 0600))
	info := identity.NewDeviceInfo(path, file.NewFileService())

	// Execute
	err := info.LoadDeviceInfo()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "truck-7", info.GetDeviceID())
	assert.Equal(t, "Truck 7", info.GetDeviceIdentity().Name)
}

func TestLoadDeviceInfo_MissingFile(t *testing.T) {
	info := identity.NewDeviceInfo(filepath.Join(t.TempDir(), "absent.json"), file.NewFileService())

	require.NoError(t, info.LoadDeviceInfo())
	assert.Empty(t, info.GetDeviceID())
}

func TestLoadDeviceInfo_Errors(t *testing.T) {
	fileOps := new(mocks.MockFileOperations)
	fileOps.On("IsFileExists", "locked.json").Return(false, errors.New("permission denied"))
	fileOps.On("IsFileExists", "broken.json").Return(true, nil)
	fileOps.On("ReadJsonFile", "broken.json", mock.Anything).Return(errors.New("unexpected EOF"))

	assert.ErrorContains(t, identity.NewDeviceInfo("locked.json", fileOps).LoadDeviceInfo(), "permission denied")
	assert.ErrorContains(t, identity.NewDeviceInfo("broken.json", fileOps).LoadDeviceInfo(), "unexpected EOF")
}
