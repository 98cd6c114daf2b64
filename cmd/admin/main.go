// Command admin bootstraps administrator accounts against the same storage
// the server uses.
//
//	admin create -email E -name N
//	admin role -email E -role R
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/server"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := run(ctx, os.Args[1:], app.Accounts(), os.Stdout); err != nil {
		log.Printf("%v", err)
		app.Close()
		os.Exit(1)
	}
}
