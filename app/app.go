package app

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"context"

	"github.com/wallet-backend/wallet-backend/api"
	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/core"
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
)

type WBAppEvent func() (err error)

// WBApp boots the wallet backend: load configurations, connect the storage
// manager, mount the services on every API listener and run until the root
// context is cancelled.
type WBApp struct {
	nameId                   string
	Title                    string
	Description              string
	Version                  string
	IsLoop                   bool
	RuntimeErrorGroup        *errgroup.Group
	RuntimeErrorGroupContext context.Context

	IsStorageExist bool
	IsAPIExist     bool

	OnDefineConfiguration WBAppEvent
	OnDefineServices      WBAppEvent
	OnExecute             WBAppEvent
	OnStopping            WBAppEvent
}

func (a *WBApp) Run() (err error) {
	if a.OnDefineConfiguration != nil {
		err = a.OnDefineConfiguration()
		if err != nil {
			log.Log.Error(err.Error())
			return err
		}
	}

	err = a.execute()
	if err != nil {
		log.Log.Error(err.Error())
		return err
	}
	return nil
}

func (a *WBApp) loadConfiguration() (err error) {
	err = configuration.Manager.Load()
	if err != nil {
		return err
	}
	_, a.IsStorageExist = configuration.Manager.Configurations["storage"]
	if a.IsStorageExist {
		err = database.Manager.LoadFromConfiguration("storage")
		if err != nil {
			return err
		}
	}
	_, a.IsAPIExist = configuration.Manager.Configurations["api"]
	if a.IsAPIExist {
		err = api.Manager.LoadFromConfiguration("api")
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *WBApp) start() (err error) {
	log.Log.Info(fmt.Sprintf("%v %v %v", a.Title, a.Version, a.Description))
	err = a.loadConfiguration()
	if err != nil {
		return err
	}

	if a.IsStorageExist {
		err = database.Manager.ConnectAllAtStart()
		if err != nil {
			return err
		}
	}

	if a.OnDefineServices != nil {
		err = a.OnDefineServices()
		if err != nil {
			log.Log.Error(err.Error())
			return err
		}
	}

	if a.IsAPIExist {
		err = api.Manager.StartAll(a.RuntimeErrorGroup, a.RuntimeErrorGroupContext)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *WBApp) Stop() (err error) {
	log.Log.Info("Stopping")
	if a.OnStopping != nil {
		err = a.OnStopping()
		if err != nil {
			return err
		}
	}
	if a.IsAPIExist {
		err = api.Manager.StopAll()
		if err != nil {
			return err
		}
	}
	if a.IsStorageExist {
		err = database.Manager.DisconnectAll()
		if err != nil {
			return err
		}
	}
	log.Log.Info("Stopped")
	return nil
}

func (a *WBApp) execute() (err error) {
	defer core.RootContextCancel()
	a.RuntimeErrorGroup, a.RuntimeErrorGroupContext = errgroup.WithContext(core.RootContext)
	err = a.start()
	if err != nil {
		return err
	}
	if a.IsLoop {
		defer func() {
			err2 := a.Stop()
			if err2 != nil {
				log.Log.Infof("Error in Stop(): (%v)", err2.Error())
			}
		}()
	}

	if a.OnExecute != nil {
		log.Log.Info("Starting")
		err = a.OnExecute()
		if err != nil {
			log.Log.Infof("OnExecute error (%v)", err.Error())
			return err
		}
	}

	if a.IsLoop {
		log.Log.Info("Waiting...")
		err = a.RuntimeErrorGroup.Wait()
		if err != nil {
			log.Log.Infof("Exit reason: %v", err.Error())
			return err
		}
	}
	return nil
}

var App WBApp

func Set(nameId, title, description string, isLoop bool) {
	App.nameId = nameId
	App.Title = title
	App.Description = description
	App.IsLoop = isLoop
	log.Log.Prefix = nameId
}

func GetNameId() string {
	return App.nameId
}

func init() {
	App = WBApp{}
}
