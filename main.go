package main

import (
	"os"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
