package main

import "github.com/reglet-dev/skillguard/cmd/skillguard/cmd"

func main() {
	cmd.Execute()
}
