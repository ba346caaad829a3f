package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/core"
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/service"
	"github.com/wallet-backend/wallet-backend/utils"
)

const (
	WBAPIDefaultWriteTimeoutSec = 300
	WBAPIDefaultReadTimeoutSec  = 300
)

// WBAPI is one HTTP listener serving the /api/{version}/{type}/{object}
// surface on a single database connection.
type WBAPI struct {
	NameId          string
	Address         string
	WriteTimeoutSec int
	ReadTimeoutSec  int
	DatabaseNameId  string
	RuntimeIsActive bool
	HTTPServer      *http.Server
	Services        map[string]service.WBService
	Context         context.Context
	Cancel          context.CancelFunc
}

// Database resolves the listener's connection from the database manager.
func (a *WBAPI) Database() *database.WBDatabase {
	nameId := a.DatabaseNameId
	if nameId == "" {
		nameId = "main"
	}
	return database.Manager.GetOrCreate(nameId)
}

// RegisterService mounts a service object under its own name for the
// service request type.
func (a *WBAPI) RegisterService(s service.WBService) {
	a.Services[s.Name()] = s
}

func (a *WBAPI) ApplyConfigurations(configurationNameId string) (err error) {
	c, ok := configuration.Manager.Configurations[configurationNameId]
	if !ok || c.Data == nil {
		return log.Log.FatalAndCreateErrorf("CONFIGURATION_NOT_FOUND:%s", configurationNameId)
	}
	c1, ok := (*c.Data)[a.NameId].(utils.JSON)
	if !ok {
		return log.Log.FatalAndCreateErrorf("CONFIGURATION_NOT_FOUND:%s.%s", configurationNameId, a.NameId)
	}

	a.Address, ok = c1[`address`].(string)
	if !ok {
		return log.Log.FatalAndCreateErrorf("CONFIGURATION_NOT_FOUND:%s.%s/address", configurationNameId, a.NameId)
	}
	if v, convErr := utils.ConvertToInt64(c1[`writetimeout-sec`]); convErr == nil {
		a.WriteTimeoutSec = int(v)
	}
	if v, convErr := utils.ConvertToInt64(c1[`readtimeout-sec`]); convErr == nil {
		a.ReadTimeoutSec = int(v)
	}
	if v, isString := c1[`database`].(string); isString {
		a.DatabaseNameId = v
	}
	return nil
}

func (a *WBAPI) StartAndWait(errorGroup *errgroup.Group) error {
	if a.RuntimeIsActive {
		return errors.New("server is already active")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		newAPIRequest(a, w, r).process()
	})

	a.HTTPServer = &http.Server{
		Addr:         a.Address,
		Handler:      mux,
		WriteTimeout: time.Duration(a.WriteTimeoutSec) * time.Second,
		ReadTimeout:  time.Duration(a.ReadTimeoutSec) * time.Second,
	}

	errorGroup.Go(func() error {
		a.RuntimeIsActive = true
		log.Log.Infof("Listening at %s... start", a.Address)
		err := a.HTTPServer.ListenAndServe()
		if (err != nil) && (!errors.Is(err, http.ErrServerClosed)) {
			log.Log.Errorf("HTTP server error: %v", err.Error())
		}
		a.RuntimeIsActive = false
		log.Log.Infof("Listening at %s... stopped", a.Address)
		return err
	})

	return nil
}

func (a *WBAPI) StartShutdown() (err error) {
	if a.RuntimeIsActive {
		log.Log.Infof("Shutdown api %s start...", a.NameId)
		err = a.HTTPServer.Shutdown(core.RootContext)
		return err
	}
	return nil
}

type WBAPIManager struct {
	Context           context.Context
	Cancel            context.CancelFunc
	APIs              map[string]*WBAPI
	ErrorGroup        *errgroup.Group
	ErrorGroupContext context.Context
}

func (am *WBAPIManager) NewAPI(nameId string) *WBAPI {
	ctx, cancel := context.WithCancel(am.Context)
	a := WBAPI{
		NameId:          nameId,
		WriteTimeoutSec: WBAPIDefaultWriteTimeoutSec,
		ReadTimeoutSec:  WBAPIDefaultReadTimeoutSec,
		Services:        map[string]service.WBService{},
		Context:         ctx,
		Cancel:          cancel,
	}
	am.APIs[nameId] = &a
	return &a
}

func (am *WBAPIManager) LoadFromConfiguration(configurationNameId string) (err error) {
	c, ok := configuration.Manager.Configurations[configurationNameId]
	if !ok || c.Data == nil {
		return log.Log.FatalAndCreateErrorf("CONFIGURATION_NOT_FOUND:%s", configurationNameId)
	}
	for k, v := range *c.Data {
		_, ok := v.(utils.JSON)
		if !ok {
			return log.Log.FatalAndCreateErrorf("Cannot read %s as JSON", k)
		}
		apiObject := am.NewAPI(k)
		err = apiObject.ApplyConfigurations(configurationNameId)
		if err != nil {
			return err
		}
	}
	return nil
}

func (am *WBAPIManager) StartAll(errorGroup *errgroup.Group, errorGroupContext context.Context) error {
	am.ErrorGroup = errorGroup
	am.ErrorGroupContext = errorGroupContext

	am.ErrorGroup.Go(func() (err error) {
		<-am.ErrorGroupContext.Done()
		log.Log.Info(`API Manager shutting down... start`)
		for _, v := range am.APIs {
			vErr := v.StartShutdown()
			if (err == nil) && (vErr != nil) {
				err = vErr
			}
		}
		log.Log.Info(`API Manager shutting down... done`)
		return nil
	})

	for _, v := range am.APIs {
		err := v.StartAndWait(am.ErrorGroup)
		if err != nil {
			return err
		}
	}
	return nil
}

func (am *WBAPIManager) StopAll() (err error) {
	am.Cancel()
	err = am.ErrorGroup.Wait()
	return err
}

var Manager WBAPIManager

func init() {
	ctx, cancel := context.WithCancel(core.RootContext)
	Manager = WBAPIManager{
		Context: ctx,
		Cancel:  cancel,
		APIs:    map[string]*WBAPI{},
	}
}
