package main

import (
	"flag"

	"github.com/adanyl0v/go-tracker/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file, the environment is used when empty")
	flag.Parse()

	app.InitDefaultLogger()
	app.MustReadConfig(*configPath)
	app.MustInitApplicationLogger()

	app.MustConnectStorage()
	defer app.DisconnectStorage()

	app.MustListenAndServeHTTP()
}
