package config

import "fmt"

// Values shipped in .env.example that must not reach production
const (
	exampleDBPassword = "change_this_secure_password"
	exampleAPIKey     = "generate_with_openssl_rand_hex_32"
	defaultDBPassword = "postgres"

	minAPIKeyLength = 32
)

// Warnings lists settings that load fine but look unsafe for the current
// environment. None of them stop the service.
func (c *Config) Warnings() []string {
	var warnings []string

	switch c.DBPassword {
	case exampleDBPassword:
		warnings = append(warnings, "DB_PASSWORD is the example value, set a real password")
	case defaultDBPassword:
		if c.Environment == EnvironmentProduction {
			warnings = append(warnings, "DB_PASSWORD is the default in production")
		}
	}

	if c.APIKey == exampleAPIKey {
		warnings = append(warnings, "API_KEY is the example value, generate one with: openssl rand -hex 32")
	} else if c.APIKey != "" && len(c.APIKey) < minAPIKeyLength {
		warnings = append(warnings, fmt.Sprintf("API_KEY is shorter than %d characters", minAPIKeyLength))
	}

	if c.Environment == EnvironmentProduction && !c.RateLimitEnabled() {
		warnings = append(warnings, "REDIS_ADDR is empty, pulls are not rate limited")
	}
	if c.DailyGrantCredits > 0 && c.DailyGrantTarget == "" {
		warnings = append(warnings, "DAILY_GRANT_TARGET is empty, the daily grant reaches nobody")
	}
	return warnings
}
