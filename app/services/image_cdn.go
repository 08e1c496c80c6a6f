package services

import (
	"fmt"
	"strings"

	"github.com/vitrinehq/vitrine/pkg/logger"
	"github.com/vitrinehq/vitrine/pkg/metrics"
	"github.com/vitrinehq/vitrine/pkg/storage"
)

// CDNDeriver delegates image transformation to a remote image service.
// Only the uploaded asset is stored; optimized and thumbnail
// renditions are parameterized URLs computed on demand, with quality
// and format selection left to the service.
type CDNDeriver struct {
	base string // e.g. https://res.example-cdn.com/acme/image/upload
}

func NewCDNDeriver(base string) *CDNDeriver {
	return &CDNDeriver{base: strings.TrimRight(base, "/")}
}

// Derive stores the upload and keeps its path as the asset reference.
// No pixel processing happens locally; the thumbnail slot holds the
// same reference, transformed at URL-resolution time.
func (d *CDNDeriver) Derive(slotPath string, original []byte) Locators {
	if err := storage.Put(slotPath, original); err != nil {
		logger.Error("cdn asset store failed", "path", slotPath, "error", err)
		return Locators{}
	}
	metrics.ImageDerivations.WithLabelValues("optimized", "derived").Inc()
	metrics.ImageDerivations.WithLabelValues("thumbnail", "derived").Inc()
	return Locators{Optimized: slotPath, Thumb: slotPath}
}

// OptimizedURL caps both dimensions at 1200px without cropping.
func (d *CDNDeriver) OptimizedURL(ref string) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("%s/c_limit,w_%d,h_%d,q_auto,f_auto/%s",
		d.base, optimizedMaxPx, optimizedMaxPx, strings.TrimLeft(ref, "/"))
}

// ThumbURL is a 300x300 fill crop.
func (d *CDNDeriver) ThumbURL(ref string) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("%s/c_fill,w_%d,h_%d,q_auto,f_auto/%s",
		d.base, thumbMaxPx, thumbMaxPx, strings.TrimLeft(ref, "/"))
}
