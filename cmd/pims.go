package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cytomine/pims/cache"
	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/config"
	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/pims"
	"github.com/cytomine/pims/source"
)

func main() {
	// Configuration
	var configFile = flag.String("config", "config.toml", "Define the configuration file to use.")
	var verbose = flag.Bool("verbose", false, "Log debug messages.")
	flag.Parse()

	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	c, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c.Log.SetLogger()
	logger.SetVerbose(c.Verbose || *verbose)
	defer logger.Shutdown()

	logger.Infof("Read configuration from %s", *configFile)
	logger.Infof("Image readers: %v", format.Readers())

	if err := serve(c); err != nil {
		logger.Errorf("%v", err)
		logger.Shutdown()
		os.Exit(1)
	}
}

func serve(c *config.Config) error {
	src, err := source.NewDiskSource(c.Root, "images", c.Cache.ImagesSize)
	if err != nil {
		return err
	}
	responses, err := cache.NewCacheFromConfig("responses", c.Cache.ResponsesSize, pims.ResponseLoader)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", pims.NewHandler(c, src, colormap.NewRegistry(), responses))
	if len(c.Cache.Peers) > 0 {
		pool := cache.SetPeers(fmt.Sprintf("http://%s", c.Listen()), c.Cache.Peers...)
		mux.Handle("/_groupcache/", pool)
	}

	server := &http.Server{
		Addr:              c.Listen(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Infof("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infof("Server running on %v, serving %s", c.Listen(), c.Root)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
