// Package spritesrc implements the sprite registry (C4): a concrete,
// in-memory mapping from sprite identifiers to animation frame data, plus a
// minimal loader for a simple row-major text sprite format. Full sprite
// file decoding (e.g. video codecs) is out of scope; this loader exists so
// the module is runnable end to end.
package spritesrc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
)

// AsciiSprite is one still frame: a row-major grid of TerminalChar.
type AsciiSprite struct {
	Pixels        []cellmodel.TerminalChar
	Width, Height int
}

// At returns the character at (x, y) within the frame.
func (s AsciiSprite) At(x, y int) (cellmodel.TerminalChar, bool) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return cellmodel.TerminalChar{}, false
	}
	return s.Pixels[y*s.Width+x], true
}

// AsciiVideo is an ordered sequence of same-sized frames.
type AsciiVideo struct {
	Width, Height int
	Frames        []AsciiSprite
}

// FrameIdentKind discriminates the three ways a frame can be addressed.
type FrameIdentKind int

const (
	FirstFrameKind FrameIdentKind = iota
	LastFrameKind
	NthFrameKind
)

// FrameIdent addresses a frame within an AsciiVideo. Nth is 1-based, as in
// the sprite source contract.
type FrameIdent struct {
	Kind FrameIdentKind
	N    uint16
}

// FirstFrame addresses the video's first frame.
func FirstFrame() FrameIdent { return FrameIdent{Kind: FirstFrameKind} }

// LastFrame addresses the video's last frame.
func LastFrame() FrameIdent { return FrameIdent{Kind: LastFrameKind} }

// Nth addresses the nth frame, 1-based.
func Nth(n uint16) FrameIdent { return FrameIdent{Kind: NthFrameKind, N: n} }

// Resolve returns the frame addressed by ident within video, or
// SpriteFrameNotFound.
func (video *AsciiVideo) Resolve(id string, ident FrameIdent) (AsciiSprite, error) {
	if len(video.Frames) == 0 {
		return AsciiSprite{}, rerrors.SpriteFrameNotFound(id, 0)
	}
	switch ident.Kind {
	case FirstFrameKind:
		return video.Frames[0], nil
	case LastFrameKind:
		return video.Frames[len(video.Frames)-1], nil
	case NthFrameKind:
		if ident.N == 0 || int(ident.N) > len(video.Frames) {
			return AsciiSprite{}, rerrors.SpriteFrameNotFound(id, ident.N)
		}
		return video.Frames[ident.N-1], nil
	}
	return AsciiSprite{}, rerrors.SpriteFrameNotFound(id, ident.N)
}

// Registry maps sprite identifiers to their decoded video data.
type Registry struct {
	mu      sync.RWMutex
	sprites map[string]*AsciiVideo
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sprites: make(map[string]*AsciiVideo)}
}

// Register stores video under id, replacing any existing entry.
func (r *Registry) Register(id string, video *AsciiVideo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sprites[id] = video
}

// RegisterFromFile loads a sprite file via LoadFile and registers it.
func (r *Registry) RegisterFromFile(id, path string) error {
	video, err := LoadFile(path)
	if err != nil {
		return err
	}
	r.Register(id, video)
	return nil
}

// Frame resolves a frame by sprite id and frame identifier.
func (r *Registry) Frame(id string, ident FrameIdent) (AsciiSprite, error) {
	r.mu.RLock()
	video, ok := r.sprites[id]
	r.mu.RUnlock()
	if !ok {
		return AsciiSprite{}, rerrors.SpriteNotFound(id)
	}
	return video.Resolve(id, ident)
}

// Video returns the full AsciiVideo registered under id.
func (r *Registry) Video(id string) (*AsciiVideo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, ok := r.sprites[id]
	if !ok {
		return nil, rerrors.SpriteNotFound(id)
	}
	return video, nil
}

// Remove deletes id from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sprites, id)
}

// LoadFile parses a minimal line-oriented text sprite format: a "WxH"
// header line, then H rows of W characters for each frame, with frames
// separated by one blank line. Colors are not represented in this format;
// every decoded TerminalChar carries default colors.
func LoadFile(path string) (*AsciiVideo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rerrors.FailedReadingPath(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var video *AsciiVideo
	var width, height int
	var frame []cellmodel.TerminalChar
	row := 0

	flushFrame := func() {
		if frame != nil {
			video.Frames = append(video.Frames, AsciiSprite{Pixels: frame, Width: width, Height: height})
		}
		frame = nil
		row = 0
	}

	for scanner.Scan() {
		line := scanner.Text()
		if video == nil {
			w, h, err := parseDims(line)
			if err != nil {
				return nil, rerrors.FailedReadingPath(path, err)
			}
			width, height = w, h
			video = &AsciiVideo{Width: w, Height: h}
			continue
		}
		if strings.TrimRight(line, "\r") == "" {
			flushFrame()
			continue
		}
		if frame == nil {
			frame = make([]cellmodel.TerminalChar, width*height)
		}
		runes := []rune(line)
		for x := 0; x < width; x++ {
			var r rune = ' '
			if x < len(runes) {
				r = runes[x]
			}
			frame[row*width+x] = cellmodel.NewTerminalChar(r)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, rerrors.FailedReadingPath(path, err)
	}
	flushFrame()
	if video == nil {
		return nil, rerrors.FailedReadingPath(path, fmt.Errorf("empty sprite file"))
	}
	return video, nil
}

func parseDims(line string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(line), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed dimension header %q", line)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed width in %q: %w", line, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed height in %q: %w", line, err)
	}
	return w, h, nil
}
