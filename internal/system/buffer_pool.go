package system

import (
	"fmt"
	"image"
	"sync"
)

// CanvasPool reuses image.RGBA buffers between preview renders. Batch runs
// produce many same-sized overviews, so recycling canvases keeps GC
// pressure down.
type CanvasPool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalCanvases = &CanvasPool{
	pools: make(map[string]*sync.Pool),
}

// GetCanvas returns a canvas of the given size from the pool or allocates
// a fresh one. Contents are unspecified; callers paint the whole canvas.
func GetCanvas(w, h int) *image.RGBA {
	return globalCanvases.Get(w, h)
}

// PutCanvas returns a canvas to the pool for reuse.
func PutCanvas(img *image.RGBA) {
	globalCanvases.Put(img)
}

func (p *CanvasPool) Get(w, h int) *image.RGBA {
	key := fmt.Sprintf("%dx%d", w, h)
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			rect := image.Rect(0, 0, w, h)
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *CanvasPool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := fmt.Sprintf("%dx%d", img.Rect.Dx(), img.Rect.Dy())
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
