package configuration

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

type WBConfiguration struct {
	NameId    string
	Filename  string
	MustExist bool
	IsLoaded  bool
	Data      *utils.JSON
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} tokens with the environment value of NAME.
func expandEnv(raw []byte) []byte {
	return envVarPattern.ReplaceAllFunc(raw, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func (c *WBConfiguration) Load() (err error) {
	raw, err := os.ReadFile(c.Filename)
	if err != nil {
		if os.IsNotExist(err) && !c.MustExist {
			log.Log.Warnf("Configuration %s file %s not found, skipped", c.NameId, c.Filename)
			return nil
		}
		return log.Log.FatalAndCreateErrorf("Configuration %s file %s cannot be read (%s)", c.NameId, c.Filename, err.Error())
	}

	data := utils.JSON{}
	err = yaml.Unmarshal(expandEnv(raw), &data)
	if err != nil {
		return log.Log.FatalAndCreateErrorf("Configuration %s file %s cannot be parsed (%s)", c.NameId, c.Filename, err.Error())
	}
	c.Data = &data
	c.IsLoaded = true
	log.Log.Infof("Configuration %s loaded from %s", c.NameId, c.Filename)
	return nil
}

type WBConfigurationManager struct {
	Configurations map[string]*WBConfiguration
}

func (m *WBConfigurationManager) NewConfiguration(nameId string, filename string, mustExist bool) *WBConfiguration {
	c := &WBConfiguration{
		NameId:    nameId,
		Filename:  filename,
		MustExist: mustExist,
	}
	m.Configurations[nameId] = c
	return c
}

func (m *WBConfigurationManager) Load() (err error) {
	for _, c := range m.Configurations {
		if c.IsLoaded {
			continue
		}
		err = c.Load()
		if err != nil {
			return err
		}
	}
	return nil
}

// GetJSON returns one top-level section of a loaded configuration.
func (m *WBConfigurationManager) GetJSON(configurationNameId string, sectionNameId string) (utils.JSON, bool) {
	c, ok := m.Configurations[configurationNameId]
	if !ok || c.Data == nil {
		return nil, false
	}
	section, ok := (*c.Data)[sectionNameId].(utils.JSON)
	if !ok {
		return nil, false
	}
	return section, true
}

var Manager WBConfigurationManager

func init() {
	Manager = WBConfigurationManager{
		Configurations: map[string]*WBConfiguration{},
	}
}
