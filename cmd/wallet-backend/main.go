package main

import (
	"os"

	"github.com/wallet-backend/wallet-backend/api"
	"github.com/wallet-backend/wallet-backend/app"
	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/service"
)

func doOnDefineConfiguration() (err error) {
	configuration.Manager.NewConfiguration("storage", "storage.yaml", true)
	configuration.Manager.NewConfiguration("api", "api.yaml", true)
	configuration.Manager.NewConfiguration("auth", "auth.yaml", true)
	configuration.Manager.NewConfiguration("payment", "payment.yaml", true)
	configuration.Manager.NewConfiguration("redis", "redis.yaml", false)
	return nil
}

func doOnDefineServices() (err error) {
	for _, a := range api.Manager.APIs {
		db := a.Database()
		a.RegisterService(service.NewSignup(db))
		a.RegisterService(service.NewSignin(db))
		a.RegisterService(service.NewPayment(db))
		a.RegisterService(service.NewPayee(db))
		a.RegisterService(service.NewAuthFromConfiguration())
	}
	return nil
}

func main() {
	app.Set("wallet-backend", "Wallet Backend", "Digital wallet HTTP API", true)
	app.App.OnDefineConfiguration = doOnDefineConfiguration
	app.App.OnDefineServices = doOnDefineServices

	err := app.App.Run()
	if err != nil {
		log.Log.Errorf("Run error (%v)", err.Error())
		os.Exit(1)
	}
}
