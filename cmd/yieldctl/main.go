package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/config"
)

func main() {
	if err := newRootCmd(config.New()).Execute(); err != nil {
		log.WithError(err).Error("yieldctl failed")
		os.Exit(1)
	}
}
