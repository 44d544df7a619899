package truckselect

import "strings"

// ForClient resolves the Selector strategy a client uses. Unknown clients
// fall back to DefaultSelector.
func ForClient(client string) Selector {
	switch strings.ToLower(client) {
	case "cencosud", "nestle":
		return NestleSelector{}
	case "smu":
		return SMUSelector{}
	case "walmart":
		return WalmartSelector{}
	default:
		return DefaultSelector{}
	}
}
