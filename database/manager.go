package database

import (
	"fmt"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/log"
)

type WBDatabaseManager struct {
	Databases map[string]*WBDatabase
}

func (dm *WBDatabaseManager) NewDatabase(nameId string, isConnectAtStart, mustConnected bool) *WBDatabase {
	d := NewDatabase(nameId)
	d.IsConnectAtStart = isConnectAtStart
	d.MustConnected = mustConnected
	dm.Databases[nameId] = d
	return d
}

func (dm *WBDatabaseManager) GetOrCreate(nameId string) *WBDatabase {
	d, ok := dm.Databases[nameId]
	if !ok {
		d = dm.NewDatabase(nameId, false, false)
	}
	return d
}

func (dm *WBDatabaseManager) LoadFromConfiguration(configurationNameId string) (err error) {
	c, ok := configuration.Manager.Configurations[configurationNameId]
	if !ok {
		return fmt.Errorf("CONFIGURATION_NOT_FOUND:%s", configurationNameId)
	}
	for k, v := range *c.Data {
		d, ok := v.(map[string]any)
		if !ok {
			return log.Log.ErrorAndCreateErrorf("Cannot read %s as JSON", k)
		}
		isConnectAtStart, _ := d[`is_connect_at_start`].(bool)
		mustConnected, _ := d[`must_connected`].(bool)
		databaseObject := dm.NewDatabase(k, isConnectAtStart, mustConnected)
		err = databaseObject.ApplyFromConfiguration()
		if err != nil {
			return err
		}
	}
	return nil
}

func (dm *WBDatabaseManager) ConnectAllAtStart() (err error) {
	if len(dm.Databases) > 0 {
		log.Log.Info("Connecting to Database Manager... start")
		for _, v := range dm.Databases {
			err = v.ApplyFromConfiguration()
			if err != nil {
				return log.Log.ErrorAndCreateErrorf("Cannot configure database %s to connect", v.NameId)
			}
			if v.IsConnectAtStart {
				err = v.Connect()
				if err != nil {
					return err
				}
			}
		}
		log.Log.Info("Connecting to Database Manager... done")
	}
	return err
}

func (dm *WBDatabaseManager) ConnectAll() (err error) {
	for _, v := range dm.Databases {
		err = v.ApplyFromConfiguration()
		if err != nil {
			return log.Log.ErrorAndCreateErrorf("Cannot configure database %s to connect", v.NameId)
		}
		err = v.Connect()
		if err != nil {
			return err
		}
	}
	return err
}

func (dm *WBDatabaseManager) DisconnectAll() (err error) {
	for _, v := range dm.Databases {
		err = v.Disconnect()
		if err != nil {
			return err
		}
	}
	return err
}

var Manager WBDatabaseManager

func init() {
	Manager = WBDatabaseManager{Databases: map[string]*WBDatabase{}}
}
