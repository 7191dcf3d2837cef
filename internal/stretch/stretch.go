// Package stretch picks the stretching illustration shown in a rest popup.
package stretch

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/koreawook/ClockApp/internal/constants"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// Picker chooses random images from a folder, skipping the most recently
// shown ones.
type Picker struct {
	mu      sync.Mutex
	dir     string
	images  []string
	history []string
	keep    int
	rnd     *rand.Rand
}

// NewPicker scans dir for images. A missing or empty folder yields a picker
// whose Next always reports false.
func NewPicker(dir string, rnd *rand.Rand) (*Picker, error) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	p := &Picker{dir: dir, keep: constants.StretchRecentExclusion, rnd: rnd}
	images, err := scan(dir)
	p.images = images
	return p, err
}

func scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// Dir returns the scanned folder.
func (p *Picker) Dir() string {
	return p.dir
}

// Count returns the number of images found.
func (p *Picker) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.images)
}

// Next returns a random image path. With more images than the exclusion
// count, none of the last five picks is repeated.
func (p *Picker) Next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.images) == 0 {
		return "", false
	}
	if len(p.images) <= p.keep {
		return p.images[p.rnd.Intn(len(p.images))], true
	}

	recent := make(map[string]bool, len(p.history))
	for _, h := range p.history {
		recent[h] = true
	}
	candidates := make([]string, 0, len(p.images))
	for _, img := range p.images {
		if !recent[img] {
			candidates = append(candidates, img)
		}
	}
	if len(candidates) == 0 {
		p.history = p.history[:0]
		candidates = p.images
	}

	picked := candidates[p.rnd.Intn(len(candidates))]
	p.history = append(p.history, picked)
	if len(p.history) > p.keep {
		p.history = p.history[1:]
	}
	return picked, true
}
