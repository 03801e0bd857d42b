package main

import "pkgs-web/internal/cli"

func main() {
	cli.Execute()
}
