// image_cache.go - LRU-кэш изображений с TTL.
// Изображения неизменяемы после вставки, поэтому инвалидация нужна только при удалении.
package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	imageCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamy_image_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш изображений.",
	}, []string{"kind"})
	imageCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamy_image_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша изображений.",
	}, []string{"kind"})
)

// ImageKind - тип сущности, которой принадлежит изображение.
type ImageKind string

const (
	ImageStop ImageKind = "stop"
	ImageBus  ImageKind = "bus"
	ImageNews ImageKind = "news"
)

// ImageCache - LRU-кэш изображений с автоматическим TTL.
// nil-кэш допустим: все операции становятся no-op.
type ImageCache struct {
	cache *expirable.LRU[string, *model.Image]
}

// NewImageCache создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewImageCache(maxSize int, ttl time.Duration) *ImageCache {
	cache := expirable.NewLRU[string, *model.Image](maxSize, nil, ttl)
	return &ImageCache{cache: cache}
}

func cacheKey(kind ImageKind, id int64) string {
	return string(kind) + ":" + strconv.FormatInt(id, 10)
}

// Get возвращает изображение из кэша. Обновляет метрики hit/miss.
func (c *ImageCache) Get(kind ImageKind, id int64) (*model.Image, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := c.cache.Get(cacheKey(kind, id))
	if ok {
		imageCacheHitsTotal.WithLabelValues(string(kind)).Inc()
		return val, true
	}
	imageCacheMissesTotal.WithLabelValues(string(kind)).Inc()
	return nil, false
}

// Set добавляет изображение в кэш.
func (c *ImageCache) Set(kind ImageKind, id int64, img *model.Image) {
	if c == nil {
		return
	}
	c.cache.Add(cacheKey(kind, id), img)
}

// Delete удаляет изображение из кэша (при удалении записи).
func (c *ImageCache) Delete(kind ImageKind, id int64) {
	if c == nil {
		return
	}
	c.cache.Remove(cacheKey(kind, id))
}

// Len возвращает количество записей в кэше.
func (c *ImageCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// sniffImage определяет MIME-тип по содержимому.
// false - содержимое не является изображением.
func sniffImage(data []byte) (string, bool) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return mt.String(), false
	}
	return mt.String(), true
}

// loadImage читает изображение через кэш, при промахе вызывает fetch.
func loadImage(c *ImageCache, kind ImageKind, id int64, fetch func() ([]byte, error)) (*model.Image, error) {
	if img, ok := c.Get(kind, id); ok {
		return img, nil
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	contentType, ok := sniffImage(data)
	if !ok {
		contentType = "application/octet-stream"
	}
	img := &model.Image{Data: data, ContentType: contentType}
	c.Set(kind, id, img)
	return img, nil
}
