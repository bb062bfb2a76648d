package config

import (
	"log"
	"os"
)

// InitLogging sets up standard logger for commands
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
