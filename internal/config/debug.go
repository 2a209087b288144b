package config

import "os"

func IsDebug() bool {
	return os.Getenv("LOBUG_DEBUG") == "1"
}
