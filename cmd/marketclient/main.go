// Command marketclient is the interactive terminal client for the
// marketplace backend: browsing and posting listings, notifications and
// the admin dashboard, all over the backend's REST API.
package main

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/kmanzi/marketclient/internal/admin"
	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/app"
	"github.com/kmanzi/marketclient/internal/auth"
	"github.com/kmanzi/marketclient/internal/config"
	"github.com/kmanzi/marketclient/internal/logger"
	"github.com/kmanzi/marketclient/internal/notifications"
	"github.com/kmanzi/marketclient/internal/products"
	"github.com/kmanzi/marketclient/internal/session"
	"github.com/kmanzi/marketclient/internal/ui"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("MarketPlace Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(opts.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	terminal := ui.NewTerminal(os.Stdout, os.Stdin)

	// Pin the API base URL before anything else happens; without a
	// reachable backend the client is useless.
	httpClient := &http.Client{Timeout: opts.RequestTimeout}
	baseURL, err := api.Discover(ctx, httpClient, opts.BaseURLs, log)
	if err != nil {
		terminal.ConnectivityLost("Cannot connect to server. Please make sure the backend is running.")
		log.Fatal("no reachable API base URL", zap.Error(err))
	}

	store, err := session.Load(opts.SessionFile)
	if err != nil {
		log.Fatal("cannot load session file", zap.Error(err))
	}

	apiClient := api.New(httpClient, baseURL, store, terminal, log)

	authMgr := auth.New(apiClient, store, terminal, log)
	productsMgr := products.New(apiClient, terminal, terminal, log, opts.PageSize, opts.FeaturedSize)
	adminMgr := admin.New(apiClient, terminal, terminal, log)
	notificationsMgr := notifications.New(apiClient, terminal, log)

	controller := app.New(apiClient, authMgr, productsMgr, adminMgr, notificationsMgr, terminal, log)
	controller.Boot(ctx)
	controller.Run(ctx)
}
