package config

import "os"

func IsDebug() bool {
	return os.Getenv("SAZED_DEBUG") == "1"
}
