package plesk

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/tkanos/gonfig"
)

const (
	DefaultPort     = 8443
	DefaultPath     = "/enterprise/control/agent.php"
	DefaultTimeout  = 30
	DefaultPlanName = "ASP.NET plan"
)

// Config holds the connection settings of one panel server.  It is read from a JSON file, any field
// can be overridden by an environment variable of the same name.
type Config struct {
	Host               string
	Port               int
	Login              string
	Password           string
	InsecureSkipVerify bool    // panels ship self-signed certificates
	TimeoutSeconds     int     // per request
	RequestsPerSecond  float64 // 0 disables rate limiting
	PlanName           string  // service plan new subscriptions are created on
	Debug              bool    // dump documents and normalized results at debug level
}

// LoadConfig reads the panel configuration file and fills in defaults.
func LoadConfig(filename string) (Config, error) {
	configuration := Config{}
	err := gonfig.GetConf(filename, &configuration)
	if err != nil {
		return configuration, fmt.Errorf("error loading configuration file %s: %w", filename, err)
	}
	configuration.applyDefaults()
	if configuration.Host == "" {
		return configuration, fmt.Errorf("configuration file %s has no Host", filename)
	}
	log.Infof("Panel %s configured with login %s", configuration.Host, configuration.Login)
	return configuration, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeout
	}
	if c.PlanName == "" {
		c.PlanName = DefaultPlanName
	}
}

// URL is the agent endpoint of the panel.
func (c Config) URL() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return "https://" + c.Host + ":" + strconv.Itoa(port) + DefaultPath
}
