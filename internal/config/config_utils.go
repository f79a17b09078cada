package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks normalises values that viper leaves in raw form
func (c *Config) applyFallbacks() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.applyObservabilityDefaults()
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"SCREENER_API_BASEURL",
		"SCREENER_API_TIMEOUT",
		"SCREENER_SERVER_PORT",
		"SCREENER_SERVER_HOST",
		"SCREENER_UPLOAD_WATCHDIR",
		"SCREENER_APP_LOGLEVEL",
		"SCREENER_OBSERVABILITY_ENABLED",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			log.Printf("[CONFIG]   %s=%s", envVar, value)
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] API Base URL: %s", c.API.BaseURL)
	log.Printf("[CONFIG] API Timeout: %s", c.API.Timeout)
	log.Printf("[CONFIG] Circuit Breaker Enabled: %t", c.API.CircuitBreaker.Enabled)
	log.Printf("[CONFIG] Server Address: %s", c.Server.Address())
	log.Printf("[CONFIG] Upload Max File Size: %d", c.Upload.MaxFileSize)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
