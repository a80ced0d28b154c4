package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// screenshotTTL is how long diagnostic screenshots are kept.
const screenshotTTL = 7 * 24 * time.Hour

// CleanupSweep deletes old diagnostic screenshots.
type CleanupSweep struct {
	Dir string

	now func() time.Time
}

func (c *CleanupSweep) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Run removes .png files older than the retention window. A missing
// directory is fine; nothing has been captured yet.
func (c *CleanupSweep) Run(ctx context.Context) error {
	entries, err := os.ReadDir(c.Dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read screenshot dir: %w", err)
	}

	cutoff := c.clock().Add(-screenshotTTL)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			log.Printf("[cleanup] remove %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[cleanup] removed %d old screenshots", removed)
	}
	return nil
}
