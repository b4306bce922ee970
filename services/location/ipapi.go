package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"platepick/models"

	"go.uber.org/zap"
)

// ipGeoResult is the subset of the ipapi.co response we care about.
type ipGeoResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Error     bool    `json:"error"`
}

// geoCache caches lookups keyed by IP address.
var (
	geoCache   = make(map[string]models.Coordinate)
	cacheMutex sync.RWMutex
)

// IPProvider resolves a coarse coordinate from the client's IP via ipapi.co.
// It is the fallback when the device does not send its own position.
type IPProvider struct {
	IP         string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewIPProvider(ip string, logger *zap.Logger) *IPProvider {
	return &IPProvider{
		IP:         ip,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Logger:     logger,
	}
}

// RequestPermission treats a missing or private IP as a denial; there is
// nothing to geolocate in that case.
func (p *IPProvider) RequestPermission(ctx context.Context) error {
	if p.IP == "" {
		return ErrPermissionDenied
	}
	return nil
}

func (p *IPProvider) CurrentCoordinate(ctx context.Context) (models.Coordinate, error) {
	cacheMutex.RLock()
	if coord, ok := geoCache[p.IP]; ok {
		cacheMutex.RUnlock()
		return coord, nil
	}
	cacheMutex.RUnlock()

	if isPrivateIP(p.IP) {
		p.Logger.Warn("Client IP is private; cannot geolocate", zap.String("ip", p.IP))
		return models.Coordinate{}, ErrLocationUnavailable
	}

	url := fmt.Sprintf("https://ipapi.co/%s/json/", p.IP)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Coordinate{}, ErrLocationUnavailable
	}
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		p.Logger.Error("Failed to query geolocation API", zap.String("ip", p.IP), zap.Error(err))
		return models.Coordinate{}, ErrLocationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.Logger.Error("Geolocation API returned non-OK status",
			zap.String("ip", p.IP), zap.Int("status", resp.StatusCode))
		return models.Coordinate{}, ErrLocationUnavailable
	}

	var geo ipGeoResult
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		p.Logger.Error("Failed to decode geolocation response", zap.String("ip", p.IP), zap.Error(err))
		return models.Coordinate{}, ErrLocationUnavailable
	}
	if geo.Error {
		return models.Coordinate{}, ErrLocationUnavailable
	}

	coord := models.Coordinate{Latitude: geo.Latitude, Longitude: geo.Longitude}
	if !validCoordinate(coord) {
		return models.Coordinate{}, ErrLocationUnavailable
	}

	cacheMutex.Lock()
	geoCache[p.IP] = coord
	cacheMutex.Unlock()

	p.Logger.Info("Geolocation resolved from IP",
		zap.String("ip", p.IP), zap.String("city", geo.City))
	return coord, nil
}

// isPrivateIP checks if an IP is private or loopback.
func isPrivateIP(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	if parsedIP.IsLoopback() {
		return true
	}
	privateIPBlocks := []*net.IPNet{
		{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
		{IP: net.IPv4(172, 16, 0, 0), Mask: net.CIDRMask(12, 32)},
		{IP: net.IPv4(192, 168, 0, 0), Mask: net.CIDRMask(16, 32)},
	}
	for _, block := range privateIPBlocks {
		if block.Contains(parsedIP) {
			return true
		}
	}
	return false
}
