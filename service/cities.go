package application

import (
	"sort"
	"strings"
)

// CityUnavailable is what the geocoder writes into the city slot of an
// address it could not resolve.
const CityUnavailable = "Ciudad no disponible"

// ExtractCity returns the second-to-last comma separated part of address.
// Addresses with fewer than three parts carry no city.
func ExtractCity(address string) (string, bool) {
	parts := strings.Split(address, ",")
	if len(parts) < 3 {
		return "", false
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	if city == "" || strings.Contains(city, CityUnavailable) {
		return "", false
	}
	return city, true
}

func uniqueCities(addresses []string) []string {
	seen := make(map[string]struct{})
	cities := []string{}
	for _, address := range addresses {
		city, ok := ExtractCity(address)
		if !ok {
			continue
		}
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
