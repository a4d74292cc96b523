package main

import (
	"fmt"
	"os"

	"github.com/selectdb/notifier/pkg/version"
)

func printVersion() {
	fmt.Println(version.GetVersion())
	os.Exit(0)
}

func getVersion() string {
	return version.GetVersion()
}
