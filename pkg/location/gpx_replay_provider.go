package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

// replayStep is the spacing used for points that carry no timestamp.
const replayStep = time.Second

// GPXReplayProvider replays the points of a GPX file as a location feed.
type GPXReplayProvider struct {
	path string
	loop bool
	read func(path string) (*gpx.GPX, error)

	mu     sync.Mutex
	points []Location
	next   int
	offset time.Duration // shift applied to each loop so time keeps moving forward
}

// NewGPXReplayProvider creates a provider for the GPX file at path. When loop
// is set the points are replayed forever, otherwise the feed ends with io.EOF.
func NewGPXReplayProvider(path string, loop bool) *GPXReplayProvider {
	return &GPXReplayProvider{
		path: path,
		loop: loop,
		read: gpx.ParseFile,
	}
}

// NewGPXReplayProviderFromBytes creates a provider for an in-memory GPX document.
func NewGPXReplayProviderFromBytes(name string, data []byte, loop bool) *GPXReplayProvider {
	return &GPXReplayProvider{
		path: name,
		loop: loop,
		read: func(string) (*gpx.GPX, error) { return gpx.ParseBytes(data) },
	}
}

func (g *GPXReplayProvider) load() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.points != nil {
		return nil
	}

	doc, err := g.read(g.path)
	if err != nil {
		return err
	}

	points := extractPoints(doc)
	if len(points) == 0 {
		return fmt.Errorf("gpx file %s has no track or route points", g.path)
	}
	g.points = points
	return nil
}

// extractPoints flattens tracks, falling back to routes when there are none.
func extractPoints(doc *gpx.GPX) []Location {
	var raw []gpx.GPXPoint
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			raw = append(raw, segment.Points...)
		}
	}
	if len(raw) == 0 {
		for _, route := range doc.Routes {
			raw = append(raw, route.Points...)
		}
	}

	points := make([]Location, 0, len(raw))
	var last time.Time
	for _, p := range raw {
		ts := p.Timestamp
		if ts.IsZero() {
			if last.IsZero() {
				ts = time.Unix(0, 0).UTC()
			} else {
				ts = last.Add(replayStep)
			}
		}
		last = ts

		var accuracy float64
		if p.HorizontalDilution.NotNull() {
			accuracy = p.HorizontalDilution.Value() * hdopMeters
		}
		points = append(points, Location{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Accuracy:  accuracy,
			Timestamp: ts,
		})
	}
	return points
}

// CheckPermission parses the file. An unreadable file is reported as denied.
func (g *GPXReplayProvider) CheckPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDenied, err
	}
	if err := g.load(); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return PermissionDenied, nil
		}
		return PermissionDenied, fmt.Errorf("failed to load gpx file %s: %w", g.path, err)
	}
	return PermissionGranted, nil
}

// GetLocation returns the next point of the file.
func (g *GPXReplayProvider) GetLocation(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	if err := g.load(); err != nil {
		return Location{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next >= len(g.points) {
		if !g.loop {
			return Location{}, io.EOF
		}
		first, last := g.points[0].Timestamp, g.points[len(g.points)-1].Timestamp
		g.offset += last.Sub(first) + replayStep
		g.next = 0
	}

	loc := g.points[g.next]
	loc.Timestamp = loc.Timestamp.Add(g.offset)
	g.next++
	return loc, nil
}

// Close rewinds the replay to the first point.
func (g *GPXReplayProvider) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 0
	g.offset = 0
	return nil
}
