package main

import (
	"context"
	"log"

	"github.com/akdemia/akdemia/internal/server"
	"github.com/akdemia/akdemia/pkg/configuration"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()

	srv, app, err := server.Default(context.Background(), conf)
	if err != nil {
		log.Fatalf("failed to assemble server: %v", err)
	}
	app.Logger().WithField("address", conf.SocketAddress).Info("listening")
	if err := srv.Start(conf.SocketAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
