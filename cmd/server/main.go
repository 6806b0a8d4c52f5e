package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
