package main

import (
	"os"

	"github.com/tj-smith47/iot-go/cmd/iotctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
