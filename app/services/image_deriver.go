package services

import (
	"github.com/vitrinehq/vitrine/config"
)

// Locators is what one image slot resolves to after derivation: the
// optimized full-size rendition and its thumbnail. Thumb is empty when
// no thumbnail could be produced.
type Locators struct {
	Optimized string
	Thumb     string
}

// Deriver turns an uploaded original into the slot's stored
// references. Derive must never fail the caller's save: on processing
// errors it degrades (optimized falls back to the raw upload, thumb
// stays empty) and returns the degraded locators.
//
// OptimizedURL and ThumbURL map stored references to fetchable URLs;
// the CDN pipeline computes its renditions here instead of storing
// them.
type Deriver interface {
	Derive(slotPath string, original []byte) Locators
	OptimizedURL(ref string) string
	ThumbURL(ref string) string
}

// NewDeriver picks the pipeline from configuration: "cdn" builds
// transformation URLs against a remote image service, anything else
// transcodes locally.
func NewDeriver() Deriver {
	if config.ImagePipeline() == "cdn" {
		return NewCDNDeriver(config.ImageCDNBase())
	}
	return NewLocalDeriver()
}
