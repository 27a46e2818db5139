package main

import "os"

func main() {
	// listen for signals before any command starts work
	InitSafeExit()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
