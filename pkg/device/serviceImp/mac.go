package serviceImp

import (
	"regexp"
	"strings"

	"agrisense/pkg/apperr"
)

var macRX = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

// NormalizeMAC upper-cases mac and checks the colon-separated 17 character form.
func NormalizeMAC(mac string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(mac))
	if !macRX.MatchString(m) {
		return "", apperr.Validationf("mac %q must look like AA:BB:CC:DD:EE:FF", mac)
	}
	return m, nil
}
