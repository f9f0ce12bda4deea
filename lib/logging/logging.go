package logging

import (
	"context"
	"log"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
}

// Logf logs a formatted message in the context of the current request.
func Logf(
	ctx context.Context,
	format string,
	v ...interface{},
) {
	log.Printf(format, v...)
}
