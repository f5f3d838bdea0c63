package attendance

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
)

var localhostIPs = map[string]bool{"127.0.0.1": true, "::1": true, "localhost": true}

// Geofence validates where a punch comes from. Active office locations take
// precedence over the configured fallback office.
type Geofence struct {
	Fallback config.OfficeConfig
	DevMode  bool
}

// CheckLocation accepts a punch within any office radius. Missing coordinates
// or no configured office skip the check.
func (g Geofence) CheckLocation(locations []attendance.OfficeLocation, lat, lon *float64) error {
	if lat == nil || lon == nil {
		return nil
	}
	if len(locations) > 0 {
		for _, office := range locations {
			if utils.CalculateHaversineDistance(*lat, *lon, office.Latitude, office.Longitude) <= office.RadiusMeters {
				return nil
			}
		}
		return attendance.ErrOutsideAllowedRadius
	}
	if g.Fallback.Latitude == nil || g.Fallback.Longitude == nil {
		return nil
	}
	if utils.CalculateHaversineDistance(*lat, *lon, *g.Fallback.Latitude, *g.Fallback.Longitude) <= g.Fallback.RadiusMeters {
		return nil
	}
	return attendance.ErrOutsideAllowedRadius
}

// CheckIP accepts an address listed on any office or in the fallback list,
// and localhost in development. No allowlist anywhere skips the check.
func (g Geofence) CheckIP(locations []attendance.OfficeLocation, ip string) error {
	if ip == "" {
		return nil
	}
	configured := len(g.Fallback.AllowedIPs) > 0
	for _, office := range locations {
		for _, allowed := range office.AllowedIPs {
			configured = true
			if allowed == ip {
				return nil
			}
		}
	}
	for _, allowed := range g.Fallback.AllowedIPs {
		if allowed == ip {
			return nil
		}
	}
	if g.DevMode && localhostIPs[ip] {
		return nil
	}
	if !configured {
		return nil
	}
	return attendance.ErrIPNotAllowed
}
