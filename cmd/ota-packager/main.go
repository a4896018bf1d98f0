package main

import "github.com/ota-kit/ota-packager/cmd/ota-packager/cmd"

func main() {
	cmd.Execute()
}
