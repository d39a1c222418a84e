package identity

import (
	"encoding/json"
	"fmt"

	"github.com/benmeehan/gps-tracker/pkg/file"
)

// Identity holds the device's unique identifier and other metadata.
type Identity struct {
	ID       string          `json:"device_id,omitempty"`
	Name     string          `json:"device_name,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// DeviceInfo reads the device identity from a JSON file provisioned on the device.
type DeviceInfo struct {
	DeviceInfoFile string
	Identity       Identity
	fileOps        file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) *DeviceInfo {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
	}
}

// LoadDeviceInfo reads the identity file. A missing file leaves the identity empty.
func (d *DeviceInfo) LoadDeviceInfo() error {
	exists, err := d.fileOps.IsFileExists(d.DeviceInfoFile)
	if err != nil {
		return fmt.Errorf("failed to stat identity file %s: %w", d.DeviceInfoFile, err)
	}
	if !exists {
		d.Identity = Identity{}
		return nil
	}
	return d.fileOps.ReadJsonFile(d.DeviceInfoFile, &d.Identity)
}

// GetDeviceIdentity returns the current device Identity.
func (d *DeviceInfo) GetDeviceIdentity() *Identity {
	return &d.Identity
}

// GetDeviceID returns the current device ID.
func (d *DeviceInfo) GetDeviceID() string {
	return d.Identity.ID
}
