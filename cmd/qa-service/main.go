package main

import (
	"os"

	"github.com/answerhub/qa-service/qaservice"
)

func main() {
	if err := qaservice.Run(); err != nil {
		os.Exit(1)
	}
}
