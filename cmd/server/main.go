package main

import (
	"github.com/eleven-am/live-console/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
