package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidLocation - строка координат не разбирается как "lat,lon".
var ErrInvalidLocation = errors.New("некорректные координаты")

// Location - географические координаты отчёта.
type Location struct {
	Latitude  float64
	Longitude float64
}

// ParseLocation разбирает строку "lat,lon".
// Широта в диапазоне [-90, 90], долгота в [-180, 180].
func ParseLocation(raw string) (Location, error) {
	latRaw, lonRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return Location{}, fmt.Errorf("%w: ожидается формат lat,lon: %q", ErrInvalidLocation, raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: широта %q", ErrInvalidLocation, latRaw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: долгота %q", ErrInvalidLocation, lonRaw)
	}

	if !isFinite(lat) || !isFinite(lon) {
		return Location{}, fmt.Errorf("%w: координаты должны быть конечными числами: %q", ErrInvalidLocation, raw)
	}
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("%w: широта %v вне диапазона [-90, 90]", ErrInvalidLocation, lat)
	}
	if lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("%w: долгота %v вне диапазона [-180, 180]", ErrInvalidLocation, lon)
	}

	return Location{Latitude: lat, Longitude: lon}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String возвращает нормализованное представление "lat,lon".
func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}
