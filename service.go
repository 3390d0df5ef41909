package main

import (
	"github.com/futurehomeno/edge-evsewifi-adapter/cmd"
)

func main() {
	cmd.Execute()
}
