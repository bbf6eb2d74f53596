// README: Provider selection from routing config.
package tracking

import (
	"fmt"

	"pharmago/internal/config"
)

// NewProvider builds the configured route provider. The Google provider also
// serves as the address resolver when a Google key is present.
func NewProvider(cfg config.RoutingConfig) (RouteProvider, AddressResolver, error) {
	var resolver AddressResolver
	var google *Google
	if cfg.GoogleKey != "" {
		g, err := NewGoogle(cfg.GoogleKey)
		if err != nil {
			return nil, nil, err
		}
		google, resolver = g, g
	}

	switch cfg.Provider {
	case "", "ors":
		return NewORS(cfg.ORSBaseURL, cfg.ORSKey, cfg.Timeout), resolver, nil
	case "google":
		if google == nil {
			return nil, nil, fmt.Errorf("routing provider google requires PHARMAGO_GOOGLE_MAPS_KEY")
		}
		return google, resolver, nil
	default:
		return nil, nil, fmt.Errorf("unknown routing provider %q", cfg.Provider)
	}
}
