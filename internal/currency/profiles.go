package currency

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed profiles.toml
var defaultProfiles []byte

// Profile describes a currency the service knows income ceilings for.
type Profile struct {
	Name      string  `toml:"name"`
	Symbol    string  `toml:"symbol"`
	MaxIncome float64 `toml:"max_income"`
}

// Profiles maps an upper-case currency code to its profile.
type Profiles map[string]Profile

type profilesFile struct {
	Currencies map[string]Profile `toml:"currencies"`
}

// LoadProfiles reads profiles from path, or the built-in set when path is
// empty.
func LoadProfiles(path string) (Profiles, error) {
	data := defaultProfiles
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading currency profiles: %w", err)
		}
		data = b
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes a TOML profiles document.
func ParseProfiles(data []byte) (Profiles, error) {
	var f profilesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing currency profiles: %w", err)
	}
	if len(f.Currencies) == 0 {
		return nil, fmt.Errorf("parsing currency profiles: no currencies defined")
	}

	out := make(Profiles, len(f.Currencies))
	for code, p := range f.Currencies {
		code = strings.ToUpper(code)
		if !IsISO4217(code) {
			return nil, fmt.Errorf("parsing currency profiles: unknown currency %q", code)
		}
		if p.MaxIncome < 0 {
			return nil, fmt.Errorf("parsing currency profiles: %s max_income must not be negative", code)
		}
		out[code] = p
	}
	return out, nil
}

// MaxIncomes returns the configured max income per currency.
func (p Profiles) MaxIncomes() map[string]float64 {
	out := make(map[string]float64, len(p))
	for code, profile := range p {
		out[code] = profile.MaxIncome
	}
	return out
}

// Codes returns the configured currency codes in sorted order.
func (p Profiles) Codes() []string {
	codes := make([]string, 0, len(p))
	for code := range p {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
