package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// hdopMeters approximates horizontal accuracy from HDOP for a consumer-grade receiver.
const hdopMeters = 5.0

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
	open     func() (io.ReadCloser, error)
	now      func() time.Time

	mu      sync.Mutex
	conn    io.ReadCloser
	scanner *bufio.Scanner
	hdop    float64 // last HDOP seen in a GGA sentence
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	d := &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		now:      time.Now,
	}
	d.open = d.openSerial
	return d
}

// NewDeviceSensorProviderWithOpener creates a DeviceSensorProvider that reads
// NMEA sentences from the stream returned by open instead of a serial port.
func NewDeviceSensorProviderWithOpener(name string, open func() (io.ReadCloser, error)) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port: name,
		open: open,
		now:  time.Now,
	}
}

func (d *DeviceSensorProvider) openSerial() (io.ReadCloser, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	return serial.OpenPort(c)
}

// connect opens the device if needed and returns the scanner for it.
func (d *DeviceSensorProvider) connect() (*bufio.Scanner, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scanner != nil {
		return d.scanner, nil
	}

	conn, err := d.open()
	if err != nil {
		return nil, err
	}
	d.conn = conn
	d.scanner = bufio.NewScanner(conn)
	return d.scanner, nil
}

// CheckPermission opens the device. Access errors are reported as a denied
// permission, any other failure is returned as an error.
func (d *DeviceSensorProvider) CheckPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDenied, err
	}
	if _, err := d.connect(); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return PermissionDenied, nil
		}
		return PermissionDenied, fmt.Errorf("failed to open GPS device %s: %w", d.port, err)
	}
	return PermissionGranted, nil
}

// GetLocation reads NMEA sentences until it finds a valid RMC fix and returns it.
// A canceled context never reopens a closed device.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	scanner, err := d.connect()
	if err != nil {
		return Location{}, err
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			d.Close()
			return Location{}, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		// Serial lines are often truncated on connect, skip anything that does not parse
		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		switch s := sentence.(type) {
		case nmea.GGA:
			d.setHDOP(s.HDOP)
		case nmea.RMC:
			if s.Validity != nmea.ValidRMC {
				continue
			}
			return Location{
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
				Accuracy:  d.accuracy(),
				Timestamp: d.fixTime(s.Date, s.Time),
			}, nil
		}
	}

	err = scanner.Err()
	d.Close()
	if err != nil {
		return Location{}, err
	}
	return Location{}, io.EOF
}

// fixTime builds the UTC time of a fix, falling back to the local clock when
// the receiver has not reported a date yet.
func (d *DeviceSensorProvider) fixTime(date nmea.Date, t nmea.Time) time.Time {
	if !date.Valid || !t.Valid {
		return d.now()
	}
	return time.Date(2000+date.YY, time.Month(date.MM), date.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

func (d *DeviceSensorProvider) setHDOP(hdop float64) {
	d.mu.Lock()
	d.hdop = hdop
	d.mu.Unlock()
}

func (d *DeviceSensorProvider) accuracy() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hdop * hdopMeters
}

// Close closes the device. A later GetLocation reopens it.
func (d *DeviceSensorProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.scanner = nil
	return err
}
