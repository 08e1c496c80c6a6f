package services

import (
	"bytes"
	"image"
	"image/color"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/vitrinehq/vitrine/pkg/logger"
	"github.com/vitrinehq/vitrine/pkg/metrics"
	"github.com/vitrinehq/vitrine/pkg/storage"
)

const (
	optimizedMaxPx   = 1200
	optimizedQuality = 85
	thumbMaxPx       = 300
	thumbQuality     = 80

	optimizedSuffix = "_optimized"
	thumbSuffix     = "_thumb"
)

// LocalDeriver transcodes uploads in-process: the original is
// flattened onto a white background, resized, and re-encoded as JPEG.
// The optimized rendition replaces the original on disk; the true
// upload bytes are never kept.
type LocalDeriver struct{}

func NewLocalDeriver() *LocalDeriver {
	return &LocalDeriver{}
}

// derivedPaths maps "articles/7/front.png" to
// "articles/7/front_optimized.jpg" and "articles/7/front_thumb.jpg".
func derivedPaths(slotPath string) (optimized, thumb string) {
	ext := path.Ext(slotPath)
	base := strings.TrimSuffix(slotPath, ext)
	return base + optimizedSuffix + ".jpg", base + thumbSuffix + ".jpg"
}

// IsDerived reports whether ref already is an optimized rendition, so
// a save that did not touch the slot skips re-derivation.
func IsDerived(ref string) bool {
	ext := path.Ext(ref)
	return strings.HasSuffix(strings.TrimSuffix(ref, ext), optimizedSuffix)
}

func (d *LocalDeriver) Derive(slotPath string, original []byte) Locators {
	if IsDerived(slotPath) {
		// the slot already holds an optimized rendition: nothing new
		// was uploaded, so do not re-derive
		thumb := strings.Replace(slotPath, optimizedSuffix, thumbSuffix, 1)
		if storage.Exists(thumb) {
			return Locators{Optimized: slotPath, Thumb: thumb}
		}
		return Locators{Optimized: slotPath}
	}

	start := time.Now()
	src, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		// degrade: keep the raw upload as the "optimized" rendition
		logger.Warn("image decode failed, keeping raw upload", "path", slotPath, "error", err)
		metrics.ImageDerivations.WithLabelValues("optimized", "fallback").Inc()
		metrics.ImageDerivations.WithLabelValues("thumbnail", "fallback").Inc()
		if err := storage.Put(slotPath, original); err != nil {
			logger.Error("image raw store failed", "path", slotPath, "error", err)
			return Locators{}
		}
		return Locators{Optimized: slotPath}
	}

	flat := flatten(src)
	optimizedPath, thumbPath := derivedPaths(slotPath)

	optimized := imaging.Fit(flat, optimizedMaxPx, optimizedMaxPx, imaging.Lanczos)
	if err := encodeJPEG(optimizedPath, optimized, optimizedQuality); err != nil {
		logger.Warn("image optimize failed, keeping raw upload", "path", slotPath, "error", err)
		metrics.ImageDerivations.WithLabelValues("optimized", "fallback").Inc()
		metrics.ImageDerivations.WithLabelValues("thumbnail", "fallback").Inc()
		if err := storage.Put(slotPath, original); err != nil {
			logger.Error("image raw store failed", "path", slotPath, "error", err)
			return Locators{}
		}
		return Locators{Optimized: slotPath}
	}
	metrics.ImageDerivations.WithLabelValues("optimized", "derived").Inc()

	out := Locators{Optimized: optimizedPath}

	thumb := imaging.Fit(flat, thumbMaxPx, thumbMaxPx, imaging.Lanczos)
	if err := encodeJPEG(thumbPath, thumb, thumbQuality); err != nil {
		logger.Warn("thumbnail encode failed", "path", thumbPath, "error", err)
		metrics.ImageDerivations.WithLabelValues("thumbnail", "fallback").Inc()
	} else {
		metrics.ImageDerivations.WithLabelValues("thumbnail", "derived").Inc()
		out.Thumb = thumbPath
	}

	metrics.ImageDerivationDuration.Observe(time.Since(start).Seconds())
	return out
}

func (d *LocalDeriver) OptimizedURL(ref string) string {
	if ref == "" {
		return ""
	}
	return storage.URL(ref)
}

func (d *LocalDeriver) ThumbURL(ref string) string {
	if ref == "" {
		return ""
	}
	return storage.URL(ref)
}

// flatten composites the source onto an opaque white canvas, so alpha
// and palette images survive the JPEG re-encode.
func flatten(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(dst, src, image.Pt(0, 0), 1.0)
}

func encodeJPEG(dst string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return err
	}
	return storage.Put(dst, buf.Bytes())
}
