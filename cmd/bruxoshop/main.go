package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/config"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/adminapi"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/app"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/notify"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/shopapi"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
)

var (
	h        bool
	x        bool
	conffile string
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&x, "x", false, "drop and reinitialize the database, then exit")
	flag.StringVar(&conffile, "c", "", "config file path")
}

func printHelp() {
	if h {
		fmt.Fprintf(os.Stderr, "Usage: bruxoshop [-h] [-x] [-c configfile]\n")
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	appConfig := config.LoadConfig(conffile)
	appConfig.InitDirs()

	application := app.NewApplication(appConfig)
	application.Init(appConfig)
	defer application.Release()

	if x {
		application.InitDb()
		zap.S().Info("database reinitialized")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()
	shopapi.InitRouter()
	notify.Setup(application)

	zap.S().Infof("starting %s on %s:%d",
		appConfig.System.Appid, appConfig.Web.Host, appConfig.Web.Port)
	if err := webserver.Listen(); err != nil {
		zap.S().Fatal(err)
	}
}
