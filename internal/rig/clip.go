package rig

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// Clip is a pre-recorded pose sequence for one skeleton. It serves as the
// pose database consumed by feature extraction: frames near the clip
// boundaries, and frames explicitly marked invalid (discontinuities between
// concatenated takes), are excluded from extraction via IsValidForExtraction.
type Clip struct {
	skel    *Skeleton
	frames  []Pose
	invalid []bool

	frameDuration float64

	// Frames the extractor may sample behind/ahead of a given index. Frames
	// whose window leaves the clip are reported invalid for extraction.
	lookBehind int
	lookAhead  int
}

// NewClip builds a clip over the given frames. frameDuration is the spacing
// between consecutive frames in seconds.
func NewClip(s *Skeleton, frames []Pose, frameDuration float64) (*Clip, error) {
	if frameDuration <= 0 {
		return nil, fmt.Errorf("frame duration must be positive, got %v", frameDuration)
	}
	for i, f := range frames {
		if err := f.check(s); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return &Clip{
		skel:          s,
		frames:        frames,
		invalid:       make([]bool, len(frames)),
		frameDuration: frameDuration,
	}, nil
}

// Skeleton returns the skeleton the clip's poses are expressed against.
func (c *Clip) Skeleton() *Skeleton { return c.skel }

// PoseCount returns the number of frames.
func (c *Clip) PoseCount() int { return len(c.frames) }

// FrameDuration returns the frame spacing in seconds.
func (c *Clip) FrameDuration() float64 { return c.frameDuration }

// Pose returns frame i. The index must be in [0, PoseCount).
func (c *Clip) Pose(i int) Pose { return c.frames[i] }

// MarkInvalid flags frame i as unusable for extraction (e.g. a discontinuity
// between concatenated takes).
func (c *Clip) MarkInvalid(i int) { c.invalid[i] = true }

// SetLookaround declares how many frames extraction may sample behind and
// ahead of an index; frames whose window would leave the clip become invalid.
func (c *Clip) SetLookaround(behind, ahead int) {
	if behind < 0 {
		behind = 0
	}
	if ahead < 0 {
		ahead = 0
	}
	c.lookBehind, c.lookAhead = behind, ahead
}

// IsValidForExtraction reports whether frame i can anchor a feature vector:
// not explicitly invalid, and its full lookaround window stays inside the clip.
func (c *Clip) IsValidForExtraction(i int) bool {
	if i < 0 || i >= len(c.frames) {
		return false
	}
	if c.invalid[i] {
		return false
	}
	if i-c.lookBehind < 0 || i+c.lookAhead >= len(c.frames) {
		return false
	}
	return true
}

// clipFile is the on-disk gob layout of a clip.
type clipFile struct {
	Names         []string
	Parents       []JointID
	FrameDuration float64
	Frames        [][]Transform
	Invalid       []bool
}

// Save writes the clip as a gzip-compressed gob file.
func (c *Clip) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create clip file: %w", err)
	}

	gz := gzip.NewWriter(f)
	file := clipFile{
		Names:         c.skel.Names,
		Parents:       c.skel.Parents,
		FrameDuration: c.frameDuration,
		Frames:        make([][]Transform, len(c.frames)),
		Invalid:       c.invalid,
	}
	for i, fr := range c.frames {
		file.Frames[i] = fr.Local
	}
	if err := gob.NewEncoder(gz).Encode(&file); err != nil {
		gz.Close()
		f.Close()
		return fmt.Errorf("encode clip: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush clip: %w", err)
	}
	return f.Close()
}

// LoadClip reads a clip written by Save.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clip file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read clip file: %w", err)
	}
	defer gz.Close()

	var file clipFile
	if err := gob.NewDecoder(gz).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode clip: %w", err)
	}

	skel, err := NewSkeleton(file.Names, file.Parents)
	if err != nil {
		return nil, fmt.Errorf("clip skeleton: %w", err)
	}
	frames := make([]Pose, len(file.Frames))
	for i, local := range file.Frames {
		frames[i] = Pose{Local: local}
	}
	clip, err := NewClip(skel, frames, file.FrameDuration)
	if err != nil {
		return nil, err
	}
	if len(file.Invalid) == len(frames) {
		clip.invalid = file.Invalid
	}
	return clip, nil
}
